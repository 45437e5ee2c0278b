package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/config"
	"github.com/pixfit/pixfit/controllers"
	"github.com/pixfit/pixfit/middleware"
	"github.com/pixfit/pixfit/services"
	"github.com/pixfit/pixfit/utils"
)

// SetupRouter wires routes, middlewares, and controllers with the
// production AI and payment clients built from configuration.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	analyzer := services.NewOpenAIAnalyzer(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AIVisionModel)
	gateway := services.NewPixClient(cfg.PixBaseURL, cfg.PixAPIKey)
	return SetupRouterWith(db, services.SystemClock, analyzer, gateway)
}

// SetupRouterWith accepts the clock and external clients explicitly so tests
// can swap them out.
func SetupRouterWith(db *gorm.DB, clock services.Clock, analyzer services.Analyzer, gateway services.PaymentGateway) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.OK(ctx, gin.H{"status": "ok"})
	})

	gate := services.NewScanGate(db, clock, cfg.FreeScansPerWeek)

	authController := controllers.NewAuthController(db)
	workoutController := controllers.NewWorkoutController(db, clock)
	scanController := controllers.NewScanController(db, clock, gate, analyzer)
	dietController := controllers.NewDietController(db, clock, analyzer)
	billingController := controllers.NewBillingController(db, clock, gateway)
	adminController := controllers.NewAdminController(db, clock)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Provider webhook is server-to-server, gated by a shared secret.
	api.POST("/billing/pix/webhook", billingController.Webhook)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/workout/items", workoutController.AddPlanItem)
	protected.GET("/workout/items", workoutController.ListPlanItems)
	protected.DELETE("/workout/items/:id", workoutController.DeletePlanItem)
	protected.POST("/workout/today", workoutController.StartToday)
	protected.GET("/workout/today/items", workoutController.ListTodayItems)
	protected.POST("/workout/today/items", workoutController.AttachItem)
	protected.POST("/workout/session-items/:id/sets", workoutController.AddSet)
	protected.DELETE("/workout/sets/:id", workoutController.DeleteSet)
	protected.GET("/workout/summary/today", workoutController.TodaySummary)
	protected.GET("/workout/summary", workoutController.RangedSummary)
	protected.GET("/workout/streak", workoutController.Streak)
	protected.GET("/workout/prs", workoutController.PRs)

	protected.POST("/scans/analyze", scanController.Analyze)
	protected.GET("/scans", scanController.History)
	protected.GET("/scans/quota", scanController.Quota)

	protected.POST("/diet/plan", dietController.Generate)
	protected.GET("/diet/plan", dietController.GetPlan)

	protected.POST("/billing/pix", billingController.CreatePix)
	protected.GET("/billing/pix/:ref", billingController.GetPix)
	protected.GET("/billing/subscription", billingController.Subscription)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.GET("/users", adminController.ListUsers)
	admin.GET("/users/:id", adminController.GetUser)
	admin.PATCH("/users/:id", adminController.UpdateUser)
	admin.GET("/finance/summary", adminController.FinanceSummary)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "error": utils.CodeNotFound})
	})

	return r
}
