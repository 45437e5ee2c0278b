package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixfit/pixfit/config"
	"github.com/pixfit/pixfit/utils"
)

// AdminRequired restricts a route group to configured back-office accounts.
// Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		email, _ := ctx.Get(ContextEmailKey)
		emailStr, _ := email.(string)
		if emailStr == "" || !isAdminEmail(emailStr) {
			utils.Fail(ctx, http.StatusForbidden, utils.CodeForbidden)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func isAdminEmail(email string) bool {
	for _, admin := range config.Get().AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}
