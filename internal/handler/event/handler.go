package event

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/model"
	apperrors "github.com/waitingboard/api/pkg/errors"
	"github.com/waitingboard/api/pkg/httputil"
)

const defaultHeartbeat = 15 * time.Second

type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan model.WaitTimeEvent, error)
}

type Handler struct {
	events    Subscriber
	heartbeat time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func NewHandler(events Subscriber) *Handler {
	return &Handler{
		events:    events,
		heartbeat: defaultHeartbeat,
		done:      make(chan struct{}),
	}
}

// Shutdown ends every open stream. Register it with
// http.Server.RegisterOnShutdown so streams do not hold up draining.
func (h *Handler) Shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/events/wait-times", h.StreamWaitTimes)
}

// StreamWaitTimes relays wait-time events as server-sent events until the
// client disconnects or Shutdown is called. A ping event keeps idle proxies
// from closing the connection.
func (h *Handler) StreamWaitTimes(c *gin.Context) {
	ctx := c.Request.Context()

	events, err := h.events.Subscribe(ctx)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(evt.Type, evt)
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
		}
		c.Writer.Flush()
	}
}
