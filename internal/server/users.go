package server

import (
	"net/http"
	"strings"

	"tasktracker/internal/auth"
	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		abortWithError(ctx, err, "")
		return
	}

	existing, err := api.users.GetUserByEmail(ctx.Request.Context(), req.Email)
	switch {
	case err == nil && existing != nil:
		abortWithError(ctx, errors.ErrUserAlreadyExists, "")
		return
	case err != nil && !errors.Is(err, errors.ErrUserNotFound):
		abortWithError(ctx, err, "ошибка регистрации пользователя")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		abortWithError(ctx, err, "ошибка регистрации пользователя")
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := api.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		abortWithError(ctx, err, "ошибка регистрации пользователя")
		return
	}

	log.WithField("user_id", user.ID).Info("Пользователь зарегистрирован")
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "пользователь успешно зарегистрирован",
		"user":    user.Public(),
	})
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(ctx, errors.ErrInvalidCredentials, "")
		return
	}

	user, err := api.users.GetUserByEmail(ctx.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			abortWithError(ctx, errors.ErrInvalidCredentials, "")
			return
		}
		abortWithError(ctx, err, "ошибка входа")
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		abortWithError(ctx, errors.ErrInvalidCredentials, "")
		return
	}

	token, _, err := api.tokens.Issue(user.ID)
	if err != nil {
		abortWithError(ctx, err, "ошибка входа")
		return
	}
	api.setTokenCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "вход выполнен успешно",
		"user":    user.Public(),
		"token":   token,
	})
}

// logout only clears the cookie. Tokens are not revoked server-side and stay
// valid until they expire.
func (api *TaskAPI) logout(ctx *gin.Context) {
	api.clearTokenCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "выход выполнен успешно"})
}

func (api *TaskAPI) me(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"user": currentUser(ctx)})
}

func (api *TaskAPI) updateUser(ctx *gin.Context) {
	user := currentUser(ctx)

	var patch models.UserPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		badRequest(ctx, err)
		return
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if err := patch.Validate(); err != nil {
		abortWithError(ctx, err, "")
		return
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			abortWithError(ctx, err, "ошибка обновления пользователя")
			return
		}
		patch.Password = &hash
	}

	updated, err := api.users.UpdateUser(ctx.Request.Context(), user.ID, patch)
	if err != nil {
		abortWithError(ctx, err, "ошибка обновления пользователя")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "пользователь успешно обновлен",
		"user":    updated.Public(),
	})
}
