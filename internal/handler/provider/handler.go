package provider

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/handler"
	"github.com/waitingboard/api/internal/middleware"
	"github.com/waitingboard/api/internal/model"
	providerService "github.com/waitingboard/api/internal/service/provider"
	"github.com/waitingboard/api/pkg/httputil"
)

type Handler struct {
	service providerService.ProviderServicer
}

func NewHandler(service providerService.ProviderServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read routes on r and the write routes on w.
func (h *Handler) RegisterRoutes(r, w gin.IRoutes) {
	middleware.RegisterValidators()

	r.GET("/providers", h.ListProviders)
	r.GET("/providers/active", h.ListActiveProviders)
	r.GET("/providers/:id", h.GetProvider)

	w.POST("/providers", h.CreateProvider)
	w.PUT("/providers/:id", h.UpdateProvider)
	w.PUT("/providers/:id/wait-time", h.SetWaitTime)
	w.PUT("/providers/:id/remove-wait-time", h.ClearWaitTime)
	w.PATCH("/providers/:id", h.RemoveProvider)
}

// ListProviders accepts ?location_id= or ?location_name=.
func (h *Handler) ListProviders(c *gin.Context) {
	locationID, err := handler.ParseOptionalID(c, "location_id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter := model.ProviderFilter{
		LocationID:   locationID,
		LocationName: strings.TrimSpace(c.Query("location_name")),
	}

	providers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

func (h *Handler) ListActiveProviders(c *gin.Context) {
	providers, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

func (h *Handler) GetProvider(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	provider, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider)
}

func (h *Handler) CreateProvider(c *gin.Context) {
	var req model.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	dropped := result.Dropped
	if dropped == nil {
		dropped = []string{}
	}
	c.JSON(http.StatusCreated, model.CreateProviderResponse{
		Message:          "Provider added successfully!",
		Locations:        model.LocationList(result.Accepted).String(),
		DroppedLocations: dropped,
		Provider:         result.Provider,
	})
}

func (h *Handler) UpdateProvider(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	if err := h.service.Update(c.Request.Context(), id, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Provider updated successfully!")
}

func (h *Handler) SetWaitTime(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.WaitTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	if err := h.service.SetWaitTime(c.Request.Context(), id, *req.WaitTime); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Wait time updated successfully!")
}

func (h *Handler) ClearWaitTime(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.ClearWaitTime(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Wait time removed successfully!")
}

// RemoveProvider soft-deletes. It succeeds for ids that do not exist.
func (h *Handler) RemoveProvider(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Provider removed successfully!")
}
