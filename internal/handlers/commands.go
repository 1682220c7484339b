package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"timeguard/internal/service"

	"github.com/gin-gonic/gin"
)

const codeNotImplemented = "not_implemented"

// @Summary      Invoke a method channel command
// @Description  reset, configureLogging ({"enableLogs":true}) or getPlatformVersion. Other names answer 501.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        method  path      string  true   "Command name"  Enums(reset,configureLogging,getPlatformVersion)
// @Param        body    body      object  false  "Command arguments"
// @Success      200     {object}  map[string]interface{}  "method, result"
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      501     {object}  map[string]string
// @Router       /api/v1/commands/{method} [post]
// @Security     BearerAuth
func (h *Handler) invokeCommand(c *gin.Context) {
	method := c.Param("method")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "malformed JSON"})
		return
	}

	out, err := h.services.Commands.Invoke(c.Request.Context(), method, json.RawMessage(body))
	if err != nil {
		if errors.Is(err, service.ErrMethodNotImplemented) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error(), "code": codeNotImplemented})
			return
		}
		if h.log != nil {
			h.log.Errorw("command_failed", "method", method, "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"method": method, "result": out})
}
