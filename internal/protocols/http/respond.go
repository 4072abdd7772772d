package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"missionhub/pkg/logger"
	"missionhub/pkg/models"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.APIResponse{
		Success:   false,
		Error:     models.ErrCodeBadRequest,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// fail maps a service error onto the envelope. Internal errors are logged
// and hidden from the client.
func fail(c *gin.Context, err error) {
	appErr := models.ClassifyError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.WithRequestID(c.Request.Context()).
			With("path", c.FullPath()).
			Error("request failed: " + err.Error())
	}
	resp := appErr.ToHTTPError()
	c.JSON(status, resp)
}

// queryInt parses an integer query parameter, falling back to def
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// actor returns the authenticated profile or writes 401
func actor(c *gin.Context) (*models.Profile, bool) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.APIResponse{
			Success:   false,
			Error:     models.ErrCodeUnauthorized,
			Message:   "unauthorized",
			Timestamp: time.Now(),
		})
		return nil, false
	}
	return user, true
}
