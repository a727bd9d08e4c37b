package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ldi/taskboard/internal/db"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidTaskID      = errors.New("task id must be an integer")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

// fromRepositoryError maps repository failures onto the public error
// envelope. Only validation messages reach the client verbatim.
func fromRepositoryError(err error) apiError {
	var v *db.ValidationError
	if errors.As(err, &v) {
		return newBadRequestError(v.Error())
	}
	return newAPIError(http.StatusInternalServerError, "internal server error")
}

func (s *Server) recovered(c *gin.Context, recovered any) {
	requestLogger(c, s.logger).Error().
		Interface("panic", recovered).
		Msg("recovered from panic")
	abort(c, newAPIError(http.StatusInternalServerError, "internal server error"))
}
