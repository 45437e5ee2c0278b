package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixfit/pixfit/models"
)

func TestAdmin_ForbiddenForRegularUsers(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	_, token := env.newUser(t, "regular@example.com", models.TierFree)

	w := env.request(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])
}

func TestAdmin_UserListAndTierOverride(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	_, adminToken := env.newUser(t, "admin@example.com", models.TierFree)
	userID, _ := env.newUser(t, "member@example.com", models.TierFree)

	w := env.request(t, http.MethodGet, "/api/v1/admin/users?q=member", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "member@example.com", users[0].(map[string]any)["email"])

	// Comp a subscription by hand.
	w = env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/users/%d", userID), adminToken, gin.H{
		"tier": "plus",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "plus", decode(t, w)["user"].(map[string]any)["tier"])

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/users/%d", userID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	activity := decode(t, w)["activity"].(map[string]any)
	assert.Equal(t, 0.0, activity["workout_sessions"])
}

func TestAdmin_FinanceSummaryZeroFills(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	_, adminToken := env.newUser(t, "admin@example.com", models.TierFree)

	paidAt := now.AddDate(0, 0, -3)
	require.NoError(t, env.db.Create(&models.Payment{
		UserID:      1,
		Provider:    "pixapi",
		ExternalRef: "ref-1",
		TxID:        "tx-1",
		AmountCents: 1990,
		Status:      models.PaymentPaid,
		PaidAt:      &paidAt,
	}).Error)

	w := env.request(t, http.MethodGet, "/api/v1/admin/finance/summary", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 1.0, body["total_paid_count"])
	assert.Equal(t, 1990.0, body["total_paid_cents"])

	daily := body["daily"].([]any)
	require.Len(t, daily, 30)
	var hit int
	for _, d := range daily {
		entry := d.(map[string]any)
		if entry["date"] == "2025-03-09" {
			assert.Equal(t, 1990.0, entry["cents"])
			hit++
		} else {
			assert.Equal(t, 0.0, entry["cents"], entry["date"])
		}
	}
	assert.Equal(t, 1, hit)
}
