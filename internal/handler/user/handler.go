package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/handler"
	"github.com/waitingboard/api/internal/middleware"
	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/service/user"
	"github.com/waitingboard/api/pkg/httputil"
)

type Handler struct {
	service user.UserServicer
}

func NewHandler(service user.UserServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read routes on r and the write routes on w.
func (h *Handler) RegisterRoutes(r, w gin.IRoutes) {
	middleware.RegisterValidators()

	r.GET("/users", h.ListUsers)
	w.POST("/users", h.CreateUser)
}

// ListUsers never includes password material; model.User hides the hash.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	user, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreateUserResponse{
		Message: "User added successfully!",
		User:    user,
	})
}
