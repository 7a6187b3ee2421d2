package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/pkg/response"
)

const serviceTimeout = 5 * time.Second

type PlayerHandler struct {
	svc service.PlayerService
}

func NewPlayerHandler(svc service.PlayerService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.GET("", h.list)
		g.POST("", h.create)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.delete)
		g.GET("/:id/profile", h.profile)
	}
}

func (h *PlayerHandler) list(c *gin.Context) {
	players, err := h.svc.ListPlayers(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, players)
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req service.PlayerInput
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	player, err := h.svc.CreatePlayer(ctx, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.PlayerInput
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	player, err := h.svc.UpdatePlayer(ctx, id, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	if err := h.svc.DeletePlayer(ctx, id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// profile returns the player card with career analytics.
func (h *PlayerHandler) profile(c *gin.Context) {
	start := time.Now()
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	prof, err := h.svc.PlayerProfile(c.Request.Context(), id)

	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("player_id", id.String()).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		status, _ := response.MapError(err)
		logger.Error().Err(err).Int("status", status).Msg("failed to build player profile")
		response.WriteError(c, err)
		return
	}
	logger.Debug().Int("status", http.StatusOK).Int("matches", prof.MatchesPlayed).Msg("player profile built")
	response.WriteData(c, http.StatusOK, prof)
}
