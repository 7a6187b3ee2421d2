package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/pkg/response"
)

// SessionHandler exposes the tracking screen intents.
type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/session")
	{
		g.GET("", h.get)
		g.PUT("/match", h.selectMatch)
		g.PUT("/player", h.selectPlayer)
		g.POST("/stats", h.record)
		g.POST("/undo", h.undo)
		g.POST("/goalkeeper", h.goalkeeper)
		g.POST("/keys", h.key)
		g.DELETE("/banner", h.dismissBanner)
		g.POST("/reload", h.reload)
	}
}

type selectMatchRequest struct {
	MatchID *uuid.UUID `json:"match_id"`
}

type selectPlayerRequest struct {
	PlayerID *uuid.UUID `json:"player_id"`
}

type recordRequest struct {
	Stat model.StatKey `json:"stat"`
}

type keyRequest struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl"`
}

func (h *SessionHandler) get(c *gin.Context) {
	view, err := h.svc.Session(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *SessionHandler) selectMatch(c *gin.Context) {
	var req selectMatchRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.SelectMatch(c.Request.Context(), req.MatchID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *SessionHandler) selectPlayer(c *gin.Context) {
	var req selectPlayerRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.SelectPlayer(c.Request.Context(), req.PlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *SessionHandler) record(c *gin.Context) {
	var req recordRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.RecordStat(c.Request.Context(), req.Stat)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *SessionHandler) undo(c *gin.Context) {
	res, err := h.svc.Undo(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// goalkeeper accepts an empty body, meaning the selected player.
func (h *SessionHandler) goalkeeper(c *gin.Context) {
	var req selectPlayerRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.ToggleGoalkeeper(c.Request.Context(), req.PlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *SessionHandler) key(c *gin.Context) {
	var req keyRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.HandleKey(c.Request.Context(), req.Key, req.Ctrl)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *SessionHandler) dismissBanner(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.DismissBanner(c.Request.Context()))
}

func (h *SessionHandler) reload(c *gin.Context) {
	view, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		status, payload := response.MapError(service.ErrNotLoaded)
		c.AbortWithStatusJSON(status, gin.H{"error": payload.Error, "message": payload.Message, "session": view})
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func catalog(c *gin.Context) {
	response.WriteData(c, http.StatusOK, model.StatCatalog())
}
