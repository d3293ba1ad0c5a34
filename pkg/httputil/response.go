package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/waitingboard/api/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of write endpoints that return no record.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithMessage sends {"message": msg}.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}

// RespondWithError writes the status and message carried by an AppError.
// Anything else is logged and reported as a bare 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code == apperrors.ErrInternal {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: apperrors.Internal(err).Message})
		return
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), ErrorResponse{Error: appErr.Message})
}

// BindError converts a ShouldBindJSON failure into a validation error with a
// message naming the offending field.
func BindError(err error) *apperrors.AppError {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
		syntaxErr      *json.SyntaxError
		maxBytesErr    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErrs) && len(validationErrs) > 0:
		return apperrors.Validation(fieldMessage(validationErrs[0]))
	case errors.As(err, &maxBytesErr):
		return apperrors.Validationf("request body exceeds %d bytes", maxBytesErr.Limit)
	case errors.As(err, &typeErr):
		return apperrors.Validationf("%s has the wrong type", typeErr.Field)
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.Validation("request body must be valid JSON")
	default:
		return apperrors.Validation("invalid request body")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "notblank":
		return fmt.Sprintf("%s cannot be empty", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
