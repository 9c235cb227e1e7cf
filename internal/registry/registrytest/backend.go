// Package registrytest provides an in-memory camera registry backend for tests.
package registrytest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"camdetect-ui/internal/models"
)

// Backend is a camera registry that keeps cameras in memory. It serves the same
// routes as the detection backend.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	cameras  []models.Camera
	received []models.CameraPayload
	classes  string
	calls    map[string]int

	// RejectCreate makes POST /api/cameras answer with this status when non-zero
	RejectCreate int
	// FailDelete makes DELETE answer {"ok": false} without removing the camera
	FailDelete bool
	// FailList makes GET /api/cameras answer 500
	FailList bool
	// EmptyCreateBody makes a successful create answer 201 without a body
	EmptyCreateBody bool
}

// NewBackend starts a backend seeded with cameras
func NewBackend(cameras ...models.Camera) *Backend {
	gin.SetMode(gin.TestMode)

	b := &Backend{
		cameras: append([]models.Camera(nil), cameras...),
		calls:   make(map[string]int),
	}

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/cameras", b.list)
		api.POST("/cameras", b.create)
		api.DELETE("/cameras/:id", b.remove)
		api.GET("/classes", b.getClasses)
		api.POST("/classes", b.setClasses)
	}

	b.Server = httptest.NewServer(router)
	return b
}

func (b *Backend) count(op string) {
	b.mu.Lock()
	b.calls[op]++
	b.mu.Unlock()
}

// Calls returns how often an operation (list, create, delete) was served
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Received returns the create payloads the backend has seen
func (b *Backend) Received() []models.CameraPayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.CameraPayload(nil), b.received...)
}

// Cameras returns the stored cameras
func (b *Backend) Cameras() []models.Camera {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Camera(nil), b.cameras...)
}

func (b *Backend) list(c *gin.Context) {
	b.count("list")
	if b.FailList {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, b.Cameras())
}

func (b *Backend) create(c *gin.Context) {
	b.count("create")

	var payload models.CameraPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.received = append(b.received, payload)
	if b.RejectCreate != 0 {
		c.JSON(b.RejectCreate, gin.H{"detail": "rejected"})
		return
	}
	if payload.Name == "" || payload.Source == "" || !payload.Protocol.IsValid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid camera"})
		return
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	cam := models.Camera{
		ID:            id,
		Name:          payload.Name,
		Location:      payload.Location,
		Protocol:      payload.Protocol,
		Source:        payload.Source,
		DetectClasses: payload.DetectClasses,
		StreamURL:     "/api/stream/" + id,
	}
	b.cameras = append(b.cameras, cam)
	if b.EmptyCreateBody {
		c.Status(http.StatusCreated)
		return
	}
	c.JSON(http.StatusCreated, cam)
}

func (b *Backend) remove(c *gin.Context) {
	b.count("delete")
	id := c.Param("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailDelete {
		c.JSON(http.StatusOK, models.DeleteResult{OK: false})
		return
	}
	for i, cam := range b.cameras {
		if cam.ID == id {
			b.cameras = append(b.cameras[:i], b.cameras[i+1:]...)
			c.JSON(http.StatusOK, models.DeleteResult{OK: true})
			return
		}
	}
	c.JSON(http.StatusOK, models.DeleteResult{OK: false})
}

func (b *Backend) getClasses(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	classes := b.classes
	if classes == "" {
		classes = "all"
	}
	c.JSON(http.StatusOK, models.ClassesConfig{DetectClasses: classes})
}

func (b *Backend) setClasses(c *gin.Context) {
	var cfg models.ClassesConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	b.classes = cfg.DetectClasses
	b.mu.Unlock()
	c.JSON(http.StatusOK, cfg)
}
