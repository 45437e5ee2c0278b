package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixfit/pixfit/models"
)

func TestAuth_RegisterLoginAndProfile(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "New.User@Example.com",
		"password": "hunter22",
		"name":     "New User",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	token := body["token"].(string)
	require.NotEmpty(t, token)

	// Duplicate registration conflicts regardless of email casing.
	w = env.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "new.user@example.com",
		"password": "hunter22",
		"name":     "New User",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", decode(t, w)["error"])

	// Wrong password is rejected without leaking which part failed.
	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "new.user@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode(t, w)["error"])

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "new.user@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Onboarding biometrics land on the profile.
	w = env.request(t, http.MethodPatch, "/api/v1/auth/profile", token, gin.H{
		"sex":            "male",
		"birth_date":     "1993-06-15",
		"height_cm":      181.0,
		"weight_kg":      84.5,
		"activity_level": "moderate",
		"goal":           "cut",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "new.user@example.com", user["email"])
	assert.Equal(t, 181.0, user["height_cm"])
	assert.Equal(t, models.TierFree, user["tier"])
	assert.Nil(t, user["password_hash"], "hash must never serialize")
}

func TestAuth_ProfileValidation(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	_, token := env.newUser(t, "p@example.com", models.TierFree)

	for name, body := range map[string]gin.H{
		"bad sex value":   {"sex": "yes"},
		"future birthday": {"birth_date": "2120-01-01"},
		"giant height":    {"height_cm": 500.0},
		"giant weight":    {"weight_kg": 900.0},
	} {
		w := env.request(t, http.MethodPatch, "/api/v1/auth/profile", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestAuth_LogoutBlacklistsToken(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	_, token := env.newUser(t, "out@example.com", models.TierFree)

	w := env.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
