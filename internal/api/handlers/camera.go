package handlers

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"camdetect-ui/internal/form"
	"camdetect-ui/internal/logging"
	"camdetect-ui/internal/models"
	"camdetect-ui/internal/preview"
	"camdetect-ui/internal/services/detection"
	"camdetect-ui/internal/shell"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplates returns the console page templates for gin's HTML renderer
func PageTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// DetectorStatus reports the detection pipeline health
type DetectorStatus interface {
	Status(ctx context.Context) detection.Status
}

type CameraHandler struct {
	shell     *shell.Shell
	detector  DetectorStatus
	consoleID string
}

func NewCameraHandler(sh *shell.Shell, detector DetectorStatus, consoleID string) *CameraHandler {
	return &CameraHandler{
		shell:     sh,
		detector:  detector,
		consoleID: consoleID,
	}
}

// DeleteRequestAction is where a card posts to open its delete confirmation
func DeleteRequestAction(id string) string {
	return "/cameras/" + id + "/delete/request"
}

type pageData struct {
	ConsoleID    string
	Detector     detection.Status
	View         shell.View
	Protocols    []models.Protocol
	ClassPresets []models.ClassPreset
	Grid         template.HTML
}

// Invalid reports whether the form field failed validation
func (p pageData) Invalid(field string) bool {
	for _, f := range p.View.Invalid {
		if string(f) == field {
			return true
		}
	}
	return false
}

func (h *CameraHandler) present(c *gin.Context) {
	// Only the first call loads; a failure is shown on the page
	if err := h.shell.Present(c.Request.Context()); err != nil {
		logging.Debug(c).Err(err).Msg("Roster not loaded")
	}
}

func (h *CameraHandler) render(c *gin.Context, status int) {
	view := h.shell.View()
	data := pageData{
		ConsoleID:    h.consoleID,
		View:         view,
		Protocols:    models.Protocols(),
		ClassPresets: models.ClassPresets(),
		Grid:         preview.HTML(view.Viewers),
	}
	if h.detector != nil {
		data.Detector = h.detector.Status(c.Request.Context())
	}
	c.HTML(status, "page.html", data)
}

func seeOther(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// Page renders the camera console
func (h *CameraHandler) Page(c *gin.Context) {
	h.present(c)
	h.render(c, http.StatusOK)
}

// AddCamera applies the posted fields to the draft and submits it
func (h *CameraHandler) AddCamera(c *gin.Context) {
	for _, field := range form.Fields() {
		value, ok := c.GetPostForm(string(field))
		if !ok {
			continue
		}
		if err := h.shell.SetField(field, value); err != nil {
			logging.Warn(c).Err(err).Str("field", string(field)).Msg("Rejected form value")
			c.String(http.StatusBadRequest, err.Error())
			return
		}
	}

	cam, err := h.shell.Submit(c.Request.Context())
	if err != nil {
		// The outcome is part of the View; the redirected page shows it
		logging.Info(c).Err(err).Msg("Camera not added")
	} else {
		logging.Info(c).Str("camera_id", cam.ID).Str("name", cam.Name).Msg("Camera added from console")
	}
	seeOther(c)
}

// RequestDelete opens the delete confirmation for a camera. The page the
// client is redirected to shows the confirmation dialog.
func (h *CameraHandler) RequestDelete(c *gin.Context) {
	id := c.Param("id")

	if pending, ok := h.shell.Pending(); ok && pending.Camera.ID == id {
		seeOther(c)
		return
	}

	if _, err := h.shell.RequestDelete(id); err != nil {
		logging.Warn(c).Err(err).Msg("Cannot open delete confirmation")
		status := http.StatusConflict
		if errors.Is(err, shell.ErrUnknownCamera) {
			status = http.StatusNotFound
		}
		h.render(c, status)
		return
	}
	seeOther(c)
}

// ResolveDelete answers the open confirmation with confirm=yes or confirm=no
func (h *CameraHandler) ResolveDelete(c *gin.Context) {
	id := c.Param("id")

	var confirmed bool
	switch c.PostForm("confirm") {
	case "yes":
		confirmed = true
	case "no":
	default:
		c.String(http.StatusBadRequest, "confirm must be yes or no")
		return
	}

	pending, ok := h.shell.Pending()
	if !ok || pending.Camera.ID != id {
		logging.Warn(c).Msg("No open delete confirmation for camera")
		seeOther(c)
		return
	}

	if err := pending.Resolve(c.Request.Context(), confirmed); err != nil {
		logging.Warn(c).Err(err).Msg("Camera delete failed")
	}
	seeOther(c)
}

// DismissNotice closes the blocking notice
func (h *CameraHandler) DismissNotice(c *gin.Context) {
	h.shell.DismissNotice()
	seeOther(c)
}

// Reload refreshes the roster
func (h *CameraHandler) Reload(c *gin.Context) {
	if err := h.shell.Reload(c.Request.Context()); err != nil {
		logging.Warn(c).Err(err).Msg("Roster reload failed")
	}
	seeOther(c)
}

// State returns the console state
// @Summary Console state
// @Description Snapshot of the draft, roster, viewers, notice and open confirmation
// @Tags console
// @Produce json
// @Success 200 {object} shell.View
// @Router /api/state [get]
func (h *CameraHandler) State(c *gin.Context) {
	h.present(c)
	c.JSON(http.StatusOK, h.shell.View())
}
