package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/config"
	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles registration, login, OAuth sign-in, and profile management.
type AuthController struct {
	db *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register handles local account registration with bcrypt hashing. Biometric
// profile fields are optional at signup and can be completed later via
// UpdateProfile.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=72"`
		Name     string `json:"name" binding:"required,min=2,max=64"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Fail(ctx, http.StatusConflict, "email_taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, "hash_failed")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Tier:         models.TierFree,
		RegisterIP:   ctx.ClientIP(),
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, "token_failed")
		return
	}

	utils.OK(ctx, gin.H{"token": token, "user": user})
}

// Login authenticates against stored bcrypt hashes.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Fail(ctx, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Fail(ctx, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, "token_failed")
		return
	}

	utils.OK(ctx, gin.H{"token": token, "user": user})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.OK(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	utils.OK(ctx, gin.H{"user": user})
}

// UpdateProfile captures or updates the biometric profile and goal.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	type request struct {
		Name          *string  `json:"name"`
		Sex           *string  `json:"sex"`
		BirthDate     *string  `json:"birth_date"` // YYYY-MM-DD
		HeightCM      *float64 `json:"height_cm"`
		WeightKG      *float64 `json:"weight_kg"`
		ActivityLevel *string  `json:"activity_level"`
		Goal          *string  `json:"goal"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
			return
		}
		updates["name"] = name
	}
	if req.Sex != nil {
		switch *req.Sex {
		case "male", "female", "other":
			updates["sex"] = *req.Sex
		default:
			utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
			return
		}
	}
	if req.BirthDate != nil {
		birth, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil || birth.After(time.Now()) {
			utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
			return
		}
		updates["birth_date"] = birth
	}
	if req.HeightCM != nil {
		if *req.HeightCM <= 0 || *req.HeightCM > 300 {
			utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
			return
		}
		updates["height_cm"] = *req.HeightCM
	}
	if req.WeightKG != nil {
		if *req.WeightKG <= 0 || *req.WeightKG > 500 {
			utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
			return
		}
		updates["weight_kg"] = *req.WeightKG
	}
	if req.ActivityLevel != nil {
		updates["activity_level"] = utils.Sanitize(*req.ActivityLevel)
	}
	if req.Goal != nil {
		updates["goal"] = utils.Sanitize(*req.Goal)
	}

	if len(updates) == 0 {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"user": user})
}

// OAuthRedirect generates the Google authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg := a.oauthConfig()
	if cfg.ClientID == "" {
		utils.Fail(ctx, http.StatusBadRequest, "oauth_not_configured")
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.OK(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	if !utils.ConsumeState(state) {
		utils.Fail(ctx, http.StatusBadRequest, "invalid_state")
		return
	}

	cfg := a.oauthConfig()
	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "oauth_exchange_failed")
		return
	}

	info, err := fetchGoogleUser(token)
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, "oauth_fetch_failed")
		return
	}

	user, err := a.findOrCreateOAuthUser(info)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, "token_failed")
		return
	}

	utils.OK(ctx, gin.H{"token": jwtToken, "user": user})
}

func (a *AuthController) oauthConfig() *oauth2.Config {
	cfg := config.Get()
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectBase + "/api/v1/auth/oauth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

type oauthUser struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &oauthUser{
		ID:        payload.ID,
		Email:     payload.Email,
		Name:      payload.Name,
		AvatarURL: payload.Picture,
	}, nil
}

func (a *AuthController) findOrCreateOAuthUser(data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "google", data.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Link to an existing local account with the same email when present.
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if err := a.db.Where("email = ?", email).First(&user).Error; err == nil {
		updates := map[string]any{"provider": "google", "provider_id": data.ID}
		if user.AvatarURL == "" && data.AvatarURL != "" {
			updates["avatar_url"] = data.AvatarURL
		}
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	user = models.User{
		Email:      email,
		Name:       utils.Sanitize(data.Name),
		AvatarURL:  data.AvatarURL,
		Provider:   "google",
		ProviderID: data.ID,
		Tier:       models.TierFree,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
