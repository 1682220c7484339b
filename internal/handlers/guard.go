package handlers

import (
	"net/http"

	"timeguard"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
)

// StateRequest is the payload of the visibility and screen endpoints.
type StateRequest struct {
	// foreground | background for visibility, on | off for screen
	State string `json:"state" binding:"required" example:"background"`
}

// SignalRequest is the payload of the signal injection endpoint.
type SignalRequest struct {
	// clock | timezone | date
	Kind string `json:"kind" binding:"required" example:"timezone"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get guard state
// @Description  Visibility, screen power, notification eligibility and the diagnostics flag.
// @Tags         guard
// @Produce      json
// @Success      200  {object}  models.GuardState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/guard/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Guard.State(c.Request.Context()))
}

// @Summary      Report visibility
// @Tags         guard
// @Accept       json
// @Produce      json
// @Param        body  body      StateRequest  true  "foreground or background"
// @Success      200   {object}  models.GuardState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/guard/visibility [post]
// @Security     BearerAuth
func (h *Handler) setVisibility(c *gin.Context) {
	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	v, err := timeguard.ParseVisibility(req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	h.services.Guard.SetVisibility(ctx, v)
	c.JSON(http.StatusOK, h.services.Guard.State(ctx))
}

// @Summary      Report screen power
// @Tags         guard
// @Accept       json
// @Produce      json
// @Param        body  body      StateRequest  true  "on or off"
// @Success      200   {object}  models.GuardState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/guard/screen [post]
// @Security     BearerAuth
func (h *Handler) setScreenPower(c *gin.Context) {
	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	sp, err := timeguard.ParseScreenPower(req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	h.services.Guard.SetScreenPower(ctx, sp)
	c.JSON(http.StatusOK, h.services.Guard.State(ctx))
}

// @Summary      Inject a time signal
// @Description  Publishes an OS time signal as if a host watcher had observed it. It is gated like any other signal.
// @Tags         guard
// @Accept       json
// @Produce      json
// @Param        body  body      SignalRequest  true  "clock, timezone or date"
// @Success      202   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/guard/signal [post]
// @Security     BearerAuth
func (h *Handler) injectSignal(c *gin.Context) {
	var req SignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	kind, err := timeguard.ParseTimeSignalKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	eligible := h.services.Guard.State(ctx).Eligible
	h.services.Guard.InjectSignal(ctx, kind)
	c.JSON(http.StatusAccepted, gin.H{"kind": kind.String(), "eligible": eligible})
}

// @Summary      Gate and delivery counters
// @Tags         guard
// @Produce      json
// @Success      200  {object}  models.GuardStats
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/guard/stats [get]
// @Security     BearerAuth
func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Guard.Stats(c.Request.Context()))
}
