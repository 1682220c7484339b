package handlers

import (
	"errors"
	"net/http"

	"timeguard/internal/models"
	"timeguard/internal/repository"
	"timeguard/internal/service"

	"github.com/gin-gonic/gin"
)

// Credentials are shared by sign-up and sign-in.
type Credentials struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest registers an operator. Role is "observer" (default) or
// "controller".
type SignUpRequest struct {
	Credentials
	Role string `json:"role"`
}

// bindJSONOrBadRequest writes a 400 and returns false when the body does not
// bind into dst.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("operator_bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Register an operator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignUpRequest  true  "operator"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input SignUpRequest
	if !h.bindJSONOrBadRequest(c, &input) {
		return
	}
	role, ok := models.ParseRole(input.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "unknown role " + input.Role})
		return
	}

	id, err := h.services.Operators.Register(c.Request.Context(), input.Name, input.Password, role)
	if err != nil {
		if h.log != nil {
			h.log.Infow("operator_sign_up_failed", "name", input.Name, "role", role, "err", err)
		}
		switch {
		case errors.Is(err, repository.ErrOperatorExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidOperator):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register operator"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
}

// @Summary      Sign in
// @Description  Returns a bearer token for the REST API and the method channel.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      Credentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input Credentials
	if !h.bindJSONOrBadRequest(c, &input) {
		return
	}

	token, err := h.services.Operators.SignIn(c.Request.Context(), input.Name, input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("operator_sign_in_failed", "name", input.Name, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid Credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
