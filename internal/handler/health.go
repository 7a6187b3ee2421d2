package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is the minimal contract I need from a repository to check readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoadState reports whether the in-memory state finished loading.
type LoadState interface {
	Loaded() bool
}

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	repo  Pinger
	state LoadState
}

func NewHealthHandler(repo Pinger, state LoadState) *HealthHandler {
	return &HealthHandler{repo: repo, state: state}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness verifies the database and reports whether state is loaded. An
// unloaded state is still ready: the client shows the load banner and can
// ask for a reload.
func (h *HealthHandler) Readiness(c *gin.Context) {
	loaded := h.state == nil || h.state.Loaded()
	if h.repo != nil {
		if err := h.repo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
				"loaded": loaded,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "loaded": loaded})
}
