package server

import (
	"net/http"

	"tasktracker/internal/domain/errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func statusFor(err error) int {
	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, errors.ErrValidationFailed),
		errors.Is(err, errors.ErrBadRequest),
		errors.Is(err, errors.ErrUserAlreadyExists),
		errors.Is(err, errors.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrInvalidToken),
		errors.Is(err, errors.ErrTokenExpired),
		errors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrUserNotFound),
		errors.Is(err, errors.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {message, error?}. Client errors carry their own
// text as the message; internal errors use message and expose the cause in
// "error".
func abortWithError(ctx *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if message == "" {
			message = errors.ErrInternalServer.Error()
		}
		log.WithError(err).WithField("path", ctx.FullPath()).Error("[ERROR] " + message)
		ctx.AbortWithStatusJSON(status, gin.H{"message": message, "error": err.Error()})
		return
	}

	body := gin.H{"message": err.Error()}
	var verr *errors.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	ctx.AbortWithStatusJSON(status, body)
}

func badRequest(ctx *gin.Context, err error) {
	log.WithError(err).Debug("Некорректное тело запроса")
	abortWithError(ctx, errors.ErrBadRequest, "")
}
