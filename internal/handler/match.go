package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MatchHandler serves matches and the ratings and MVP picks that hang off them.
type MatchHandler struct {
	matches service.MatchService
	ratings service.RatingService
	mvps    service.MVPService
}

func NewMatchHandler(matches service.MatchService, ratings service.RatingService, mvps service.MVPService) *MatchHandler {
	return &MatchHandler{matches: matches, ratings: ratings, mvps: mvps}
}

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches")
	{
		g.GET("", h.list)
		g.POST("", h.create)
		g.GET("/:id", h.get)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.delete)
		g.GET("/:id/summary", h.summary)
		g.GET("/:id/export", h.export)
	}
	if h.ratings != nil {
		r.GET("/ratings", h.listRatings)
		g.PUT("/:id/ratings/:player_id", h.upsertRating)
		g.DELETE("/:id/ratings/:player_id", h.deleteRating)
	}
	if h.mvps != nil {
		r.GET("/mvps", h.listMVPs)
		g.PUT("/:id/mvp", h.selectMVP)
		g.DELETE("/:id/mvp", h.clearMVP)
	}
}

func (h *MatchHandler) list(c *gin.Context) {
	items, err := h.matches.ListMatches(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, items)
}

func (h *MatchHandler) create(c *gin.Context) {
	var req service.MatchInput
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	m, err := h.matches.CreateMatch(ctx, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *MatchHandler) get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.matches.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.MatchInput
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	m, err := h.matches.UpdateMatch(ctx, id, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	if err := h.matches.DeleteMatch(ctx, id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MatchHandler) summary(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	sum, err := h.matches.MatchSummary(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sum)
}

func (h *MatchHandler) export(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	data, name, err := h.matches.ExportMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *MatchHandler) listRatings(c *gin.Context) {
	rs, err := h.ratings.ListRatings(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rs)
}

func (h *MatchHandler) upsertRating(c *gin.Context) {
	matchID, playerID, ok := pairParams(c)
	if !ok {
		return
	}
	var req service.RatingInput
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	r, err := h.ratings.UpsertRating(ctx, matchID, playerID, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, r)
}

func (h *MatchHandler) deleteRating(c *gin.Context) {
	matchID, playerID, ok := pairParams(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	if err := h.ratings.DeleteRating(ctx, matchID, playerID); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MatchHandler) listMVPs(c *gin.Context) {
	rs, err := h.mvps.ListMVPs(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rs)
}

type selectMVPRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

func (h *MatchHandler) selectMVP(c *gin.Context) {
	matchID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req selectMVPRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PlayerID == uuid.Nil {
		response.WriteInvalid(c, "player_id", "must not be empty")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	r, err := h.mvps.SelectMVP(ctx, matchID, req.PlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, r)
}

func (h *MatchHandler) clearMVP(c *gin.Context) {
	matchID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	if err := h.mvps.ClearMVP(ctx, matchID); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pairParams(c *gin.Context) (matchID, playerID uuid.UUID, ok bool) {
	if matchID, ok = paramUUID(c, "id"); !ok {
		return
	}
	playerID, ok = paramUUID(c, "player_id")
	return
}
