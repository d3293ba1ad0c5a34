package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitingboard/api/internal/model"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

func TestBindError(t *testing.T) {
	var req model.CreateUserRequest
	adminErr := json.Unmarshal([]byte(`{"admin":"yes"}`), &req)
	require.Error(t, adminErr)

	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"admin flag from decoder", adminErr, MsgInvalidAdminFlag},
		{"wrapped admin flag", fmt.Errorf("bind: %w", model.ErrInvalidAdminFlag), MsgInvalidAdminFlag},
		{"location list", model.ErrInvalidLocationList, model.ErrInvalidLocationList.Error()},
		{"falls through", &json.UnmarshalTypeError{Field: "waitTime"}, "waitTime has the wrong type"},
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

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/providers/"+tt.raw, nil)
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			id, err := ParseID(c, "id")
			if !tt.ok {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
