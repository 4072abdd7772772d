package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"missionhub/pkg/models"
)

// TokenValidator resolves a bearer token to a profile
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Profile, error)
}

// Handler upgrades GET /ws/activity. A token is optional; anonymous clients
// receive the same events.
type Handler struct {
	hub            *Hub
	auth           TokenValidator
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

func NewHandler(hub *Hub, auth TokenValidator, allowedOrigins []string) *Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	h := &Handler{hub: hub, auth: auth, allowedOrigins: allowedOrigins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID := ""
	if token, err := extractToken(c); err == nil && h.auth != nil {
		profile, err := h.auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Error:   models.ErrCodeUnauthorized,
				Message: "invalid token",
			})
			return
		}
		userID = profile.ID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the response
		logrus.Warnf("websocket upgrade failed: %v", err)
		return
	}
	h.hub.Serve(conn, userID)
}

var errNoToken = errors.New("no authentication token provided")

// extractToken reads the token from the query, the Authorization header or
// a cookie, in that order
func extractToken(c *gin.Context) (string, error) {
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	if parts := strings.Fields(c.GetHeader("Authorization")); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], nil
	}
	if cookie, err := c.Request.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errNoToken
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// non-browser clients omit Origin
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil {
		host := strings.ToLower(u.Hostname())
		if host == "localhost" || host == "127.0.0.1" {
			return true
		}
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
