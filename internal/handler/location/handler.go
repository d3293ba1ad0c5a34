package location

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/handler"
	"github.com/waitingboard/api/internal/middleware"
	"github.com/waitingboard/api/internal/model"
	locationService "github.com/waitingboard/api/internal/service/location"
	"github.com/waitingboard/api/pkg/httputil"
)

type Handler struct {
	service locationService.LocationServicer
}

func NewHandler(service locationService.LocationServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read routes on r and the write routes on w.
func (h *Handler) RegisterRoutes(r, w gin.IRoutes) {
	middleware.RegisterValidators()

	r.GET("/locations", h.ListLocations)
	w.POST("/locations", h.CreateLocation)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	location, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreateLocationResponse{
		Message:  "Location added successfully!",
		Location: location,
	})
}
