package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/handler"
	"github.com/waitingboard/api/internal/middleware"
	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/service/auth"
	"github.com/waitingboard/api/pkg/httputil"
)

type Handler struct {
	svc auth.AuthServicer
}

func NewHandler(svc auth.AuthServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	middleware.RegisterValidators()

	r.POST("/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
