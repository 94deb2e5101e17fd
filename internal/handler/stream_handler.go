package handler

import (
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/sushilghimire07/Social-Media-App/pkg/log"
	"github.com/sushilghimire07/Social-Media-App/pkg/middleware"
	"github.com/sushilghimire07/Social-Media-App/pkg/response"
)

// StreamEvents serves the live event stream over SSE. The connection stays
// open until the client disconnects or the hub shuts down. EventSource
// clients pass the token as a query parameter, which the auth middleware
// accepts for this route.
func (h *Handler) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stream, err := h.hub.Subscribe(userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("subscribe failed")
		response.InternalError(c, "failed to open event stream")
		return
	}
	defer h.hub.Unsubscribe(userID, stream)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Render(-1, sse.Event{Event: "connected", Data: gin.H{"user_id": userID}})
	c.Writer.Flush()

	l.Info().Str(log.FieldUserID, userID).Msg("event stream opened")

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			l.Info().Str(log.FieldUserID, userID).Msg("event stream closed by client")
			return
		case <-stream.Done():
			l.Info().Str(log.FieldUserID, userID).Msg("event stream closed by hub")
			return
		case ev := <-stream.Send:
			c.Render(-1, sse.Event{Event: ev.Name, Data: string(ev.Data)})
			c.Writer.Flush()
		}
	}
}
