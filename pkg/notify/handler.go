package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/handler"
)

func NewHandler(logger *slog.Logger, broker *Broker, sender sender) Handler {
	return Handler{
		logger: logger,
		broker: broker,
		sender: sender,
	}
}

type Handler struct {
	logger *slog.Logger
	broker *Broker
	sender sender
}

type sender interface {
	Send(ctx context.Context, event Event)
}

// Stream invalidations of a wedding
func (h Handler) Stream(c *gin.Context) {
	// swagger:route GET /weddings/{weddingId}/stream streamInvalidations
	//
	// Stream invalidations
	//
	// Stream an "invalidate" event whenever a view of the wedding changed and has to be reloaded...
	//
	// responses:
	//   200: Stream
	//   400: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, events := h.broker.Subscribe(weddingID)
	defer h.broker.Unsubscribe(weddingID, id)
	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "Stream opened", "subscriber", id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("invalidate", event)
			return true
		}
	})
	h.logger.InfoContext(ctx, "Stream closed", "subscriber", id)
}

type InvalidateRequest struct {
	View string `json:"view"`
}

// Invalidate views of a wedding
func (h Handler) Invalidate(c *gin.Context) {
	// swagger:route POST /weddings/{weddingId}/invalidations invalidateViews
	//
	// Invalidate views
	//
	// Make every holder of a view reload it, e.g. after the events of the wedding changed. Without a view every view of the wedding is invalidated...
	//
	// responses:
	//   202:
	//   400: Error
	//   415: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var request InvalidateRequest
	if c.Request.ContentLength != 0 {
		if err := handler.DataBinder(c, &request); err != nil {
			_ = c.Error(err)
			return
		}
	}

	h.sender.Send(c.Request.Context(), Event{WeddingID: weddingID, View: request.View})

	c.Status(http.StatusAccepted)
}
