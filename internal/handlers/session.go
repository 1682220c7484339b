package handlers

import (
	"errors"
	"net/http"
	"strings"

	"timeguard/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	// tokenQueryParam carries the access token for websocket clients that
	// cannot set headers on the upgrade request.
	tokenQueryParam = "access_token"
)

var (
	errMissingToken  = errors.New("missing access token")
	errBadAuthHeader = errors.New("invalid Authorization header format")
	errBadToken      = errors.New("invalid or expired token")
	errCannotControl = errors.New("operator role cannot control the guard")
)

// accessToken reads the bearer token from the Authorization header, falling
// back to the access_token query parameter.
func accessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || scheme != "Bearer" || token == "" {
			return "", errBadAuthHeader
		}
		return token, nil
	}
	if token := r.URL.Query().Get(tokenQueryParam); token != "" {
		return token, nil
	}
	return "", errMissingToken
}

// authenticate is the single token check shared by the REST routes and the
// method channel upgrade.
func (h *Handler) authenticate(r *http.Request) (models.Session, error) {
	token, err := accessToken(r)
	if err != nil {
		return models.Session{}, err
	}
	sess, err := h.services.Operators.Authenticate(token)
	if err != nil {
		if h.log != nil {
			h.log.Debugw("auth_token_rejected", "err", err)
		}
		return models.Session{}, errBadToken
	}
	return sess, nil
}

// requireSession rejects requests without a valid access token.
func (h *Handler) requireSession(c *gin.Context) {
	sess, err := h.authenticate(c.Request)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

// requireControl must run after requireSession.
func (h *Handler) requireControl(c *gin.Context) {
	if !sessionFrom(c).CanControl() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errCannotControl.Error()})
		return
	}
	c.Next()
}

func sessionFrom(c *gin.Context) models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}
	}
	sess, _ := v.(models.Session)
	return sess
}
