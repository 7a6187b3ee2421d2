// Package handler is the gin HTTP surface of the tracker. Handlers stay thin:
// decode, call one service method, write through pkg/response.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/pkg/response"
)

// APIV1Prefix is the canonical base path for public HTTP API v1.
const APIV1Prefix = "/api/v1"

// Deps is everything the routes need. Nil services leave their routes
// unmounted, which keeps health-only engines cheap to build in tests.
type Deps struct {
	Pinger  Pinger
	State   LoadState
	Metrics http.Handler

	Players service.PlayerService
	Matches service.MatchService
	Session service.SessionService
	Ratings service.RatingService
	MVPs    service.MVPService
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	h := NewHealthHandler(d.Pinger, d.State)

	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		api.GET("/stats/catalog", catalog)
		if d.Session != nil {
			NewSessionHandler(d.Session).Register(api)
		}
		if d.Players != nil {
			NewPlayerHandler(d.Players).Register(api)
		}
		if d.Matches != nil {
			NewMatchHandler(d.Matches, d.Ratings, d.MVPs).Register(api)
		}
	}
}

// paramUUID reads a path parameter as a UUID, writing a 400 when it is not one.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.WriteInvalid(c, name, "must be a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body, writing a 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.WriteInvalid(c, "body", "malformed JSON")
		return false
	}
	return true
}
