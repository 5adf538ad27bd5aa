package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "vet-clinic-service/pkg/errors"
	"vet-clinic-service/pkg/logger"
)

// errorBody is the JSON shape returned for every failed request.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var statusCodes = map[int]string{
	http.StatusBadRequest:          "invalid_argument",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "conflict",
	http.StatusInternalServerError: "internal_error",
}

// respondError maps an application error to an HTTP response. Errors that
// carry their own status keep their message; anything else is treated as an
// internal failure and the message is replaced with a generic one so
// datastore details never reach the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var statuser pkgerrors.HTTPStatuser
	if errors.As(err, &statuser) {
		status = statuser.HTTPStatus()
		message = err.Error()
	}

	if status >= 500 {
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "internal server error"
	}

	code := statusCodes[status]
	if code == "" {
		code = "error"
	}

	c.AbortWithStatusJSON(status, errorBody{Error: code, Message: message})
}
