package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/waitingboard/api/pkg/errors"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/providers/1", nil)
	RespondWithError(c, err)
	return w
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", apperrors.Validation("name is required"), http.StatusBadRequest, `{"error":"name is required"}`},
		{"wrapped not found", fmt.Errorf("failed to get provider: %w", apperrors.NotFound("provider", nil)), http.StatusNotFound, `{"error":"provider not found"}`},
		{"conflict", apperrors.Conflict("location already exists", nil), http.StatusConflict, `{"error":"location already exists"}`},
		{"unauthorized", apperrors.Unauthorized("invalid credentials"), http.StatusUnauthorized, `{"error":"invalid credentials"}`},
		{"plain error hides detail", errors.New("pq: connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
		{"internal", apperrors.Internal(errors.New("boom")), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := respond(tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestBindError(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}
	typeErr := &json.UnmarshalTypeError{Field: "waitTime"}

	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"wrong type", typeErr, "waitTime has the wrong type"},
		{"syntax", syntaxErr, "request body must be valid JSON"},
		{"empty body", io.EOF, "request body must be valid JSON"},
		{"too large", &http.MaxBytesError{Limit: 16}, "request body exceeds 16 bytes"},
		{"other", errors.New("whatever"), "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := BindError(tt.err)
			assert.Equal(t, apperrors.ErrValidation, appErr.Code)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestRespondWithMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithMessage(c, http.StatusOK, "Provider updated successfully!")
	assert.JSONEq(t, `{"message":"Provider updated successfully!"}`, w.Body.String())
}
