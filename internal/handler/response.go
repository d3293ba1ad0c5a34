package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/model"
	apperrors "github.com/waitingboard/api/pkg/errors"
	"github.com/waitingboard/api/pkg/httputil"
)

// MsgInvalidAdminFlag is what clients see for an admin flag that is neither
// a boolean nor "true"/"false".
const MsgInvalidAdminFlag = "Invalid value for admin. Must be 'true' or 'false'."

// BindError maps decode errors raised by request models to client messages
// and leaves the rest to httputil.BindError.
func BindError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, model.ErrInvalidAdminFlag):
		return apperrors.Validation(MsgInvalidAdminFlag)
	case errors.Is(err, model.ErrInvalidLocationList):
		return apperrors.Validation(model.ErrInvalidLocationList.Error())
	default:
		return httputil.BindError(err)
	}
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validationf("invalid %s", param)
	}
	return id, nil
}

// ParseOptionalID reads a positive integer query parameter. A missing
// parameter returns nil.
func ParseOptionalID(c *gin.Context, key string) (*int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.Validationf("invalid %s", key)
	}
	return &id, nil
}
