package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/services"
)

type NotificationHandler struct {
	Hub *services.NotificationHub
}

func NewNotificationHandler(hub *services.NotificationHub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream is GET /notifications/stream?since=N&job_id=J, a Server-Sent Events
// feed. Last-Event-ID takes precedence over since on reconnect; without
// job_id events of every job are sent.
func (h *NotificationHandler) Stream(c *gin.Context) {
	since := int64(0)
	raw := c.GetHeader("Last-Event-ID")
	if raw == "" {
		raw = c.Query("since")
	}
	if raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since"})
			return
		}
		since = v
	}

	var jobID uint
	if raw := c.Query("job_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job_id"})
			return
		}
		jobID = uint(v)
	}

	replay, live, cancel := h.Hub.Subscribe(jobID, since)
	defer cancel()

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for _, n := range replay {
		writeEvent(c, n)
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-live:
			if !ok {
				return false
			}
			writeEvent(c, n)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func writeEvent(c *gin.Context, n dtos.Notification) {
	c.Render(-1, sse.Event{
		Id:    strconv.FormatInt(n.Seq, 10),
		Event: n.Event,
		Data:  n,
	})
}
