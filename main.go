package main

import (
	"github.com/pixfit/pixfit/config"
	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/routes"
	"github.com/pixfit/pixfit/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.WorkoutItem{},
		&models.WorkoutSession{},
		&models.SessionItem{},
		&models.Set{},
		&models.ScanLog{},
		&models.DietPlan{},
		&models.Payment{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	var err error
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		err = utils.GraceServerTLS(":"+cfg.AppPort, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		err = utils.GraceServer(":"+cfg.AppPort, r)
	}
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
