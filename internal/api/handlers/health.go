package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"camdetect-ui/internal/services/detection"
)

type HealthHandler struct {
	ConsoleID  string
	Version    string
	BackendURL string
	detector   DetectorStatus
}

func NewHealthHandler(consoleID, version, backendURL string, detector DetectorStatus) *HealthHandler {
	return &HealthHandler{
		ConsoleID:  consoleID,
		Version:    version,
		BackendURL: backendURL,
		detector:   detector,
	}
}

type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	ConsoleID string            `json:"console_id" example:"console-1"`
	Detector  *detection.Status `json:"detector,omitempty"`
}

type ConsoleInfoResponse struct {
	ConsoleID string `json:"console_id" example:"console-1"`
	Version   string `json:"version" example:"1.0.0"`
	Backend   string `json:"backend" example:"http://localhost:8000"`
	SwaggerUI string `json:"swagger_ui" example:"/docs/index.html"`
}

// @Summary Health check
// @Description Check if the console is healthy and report the detector status
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		ConsoleID: h.ConsoleID,
	}
	if h.detector != nil {
		st := h.detector.Status(c.Request.Context())
		resp.Detector = &st
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Console information
// @Description Get basic console information
// @Tags health
// @Produce json
// @Success 200 {object} ConsoleInfoResponse
// @Router /api/info [get]
func (h *HealthHandler) ConsoleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ConsoleInfoResponse{
		ConsoleID: h.ConsoleID,
		Version:   h.Version,
		Backend:   h.BackendURL,
		SwaggerUI: "/docs/index.html",
	})
}
