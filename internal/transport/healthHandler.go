package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/ds124wfegd/learnlink/pkg/queue"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// QueueStatser reports notification queue depth.
type QueueStatser interface {
	Stats(ctx context.Context) (*queue.QueueStats, error)
}

type HealthHandler struct {
	db      Pinger
	queue   QueueStatser
	version string
}

// NewHealthHandler accepts a nil queue when redis is disabled.
func NewHealthHandler(db Pinger, queue QueueStatser, version string) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().UTC(),
		"database":  "ok",
	}

	if err := h.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = err.Error()
	}

	if h.queue != nil {
		if stats, err := h.queue.Stats(ctx); err != nil {
			body["queue"] = err.Error()
		} else {
			body["queue"] = stats
		}
	}

	c.JSON(status, body)
}
