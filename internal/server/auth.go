package server

import (
	"net/http"
	"strings"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const (
	tokenCookieName = "token"

	// ContextUserKey holds the authenticated *models.User, password cleared.
	ContextUserKey = "auth.user"
)

// authGate resolves the session token to a user or aborts the request:
// 401 without a token, 403 for an invalid or expired one, 404 when the
// user no longer exists.
func (api *TaskAPI) authGate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			abortWithError(ctx, errors.ErrUnauthenticated, "")
			return
		}

		userID, err := api.tokens.Verify(token)
		if err != nil {
			abortWithError(ctx, err, "")
			return
		}

		user, err := api.users.GetUserByID(ctx.Request.Context(), userID)
		if err != nil {
			abortWithError(ctx, err, "ошибка сервера")
			return
		}

		public := user.Public()
		ctx.Set(ContextUserKey, &public)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(tokenCookieName); err == nil && cookie != "" {
		return cookie
	}
	return strings.TrimSpace(ctx.GetHeader("Authorization"))
}

func currentUser(ctx *gin.Context) *models.User {
	user, _ := ctx.MustGet(ContextUserKey).(*models.User)
	return user
}

func (api *TaskAPI) setTokenCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(api.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   api.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (api *TaskAPI) clearTokenCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   api.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
