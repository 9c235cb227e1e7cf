package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxStartTime ctxKey = "start_time"
	ctxCameraID  ctxKey = "camera_id"
)

// SetRequestID tags every later event of the request with id
func SetRequestID(c *gin.Context, id string) {
	c.Set(string(ctxRequestID), id)
}

// RequestID returns the id set by SetRequestID, or ""
func RequestID(c *gin.Context) string {
	return c.GetString(string(ctxRequestID))
}

// SetCameraID tags every later event of the request with the camera it acts on
func SetCameraID(c *gin.Context, cameraID string) {
	if cameraID != "" {
		c.Set(string(ctxCameraID), cameraID)
	}
}

// MarkStart makes later events carry the time elapsed since now
func MarkStart(c *gin.Context) {
	c.Set(string(ctxStartTime), time.Now())
}

func withGinContext(c *gin.Context, e *zerolog.Event) *zerolog.Event {
	if c == nil {
		return e
	}
	if s := c.GetString(string(ctxRequestID)); s != "" {
		e.Str("request_id", s)
	}
	if s := c.GetString(string(ctxCameraID)); s != "" {
		e.Str("camera_id", s)
	}
	if t := c.GetTime(string(ctxStartTime)); !t.IsZero() {
		e.Dur("duration", time.Since(t))
	}
	return e
}

func Info(c *gin.Context) *zerolog.Event  { return withGinContext(c, log.Info()) }
func Debug(c *gin.Context) *zerolog.Event { return withGinContext(c, log.Debug()) }
func Warn(c *gin.Context) *zerolog.Event  { return withGinContext(c, log.Warn()) }
func Error(c *gin.Context) *zerolog.Event { return withGinContext(c, log.Error()) }
