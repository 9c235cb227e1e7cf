// Package preview composes one live stream viewer per roster camera.
//
// A viewer is a passive media element bound to the camera's stream_url. The
// panel does no protocol handling; turning an RTSP/RTMP/HLS/USB source into
// something a browser can show is the backend's job. Viewers are built and
// rendered independently so a bad entry only ever affects its own card.
package preview

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewerTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Resolver turns a backend stream_url into something the browser can load
type Resolver interface {
	ResolveStreamURL(streamURL string) (string, error)
}

// Viewer is the render model of one camera card
type Viewer struct {
	CameraID      string `json:"camera_id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Protocol      string `json:"protocol"`
	DetectClasses string `json:"detect_classes"`
	Src           string `json:"src,omitempty"`
	Err           string `json:"error,omitempty"`
	DeleteAction  string `json:"-"`
}

// LocationLabel is the location line of the card
func (v Viewer) LocationLabel() string {
	if v.Location == "" {
		return "-"
	}
	return v.Location
}

// ClassesLabel is the classes shown on the card
func (v Viewer) ClassesLabel() string {
	if v.DetectClasses == "" {
		return "(unset)"
	}
	return v.DetectClasses
}

// Panel builds and renders viewers
type Panel struct {
	resolver   Resolver
	deleteAction func(id string) string
}

// Option configures a Panel
type Option func(*Panel)

// WithDeleteAction adds a delete button to each card. The button posts to
// the URL action returns for the camera id.
func WithDeleteAction(action func(id string) string) Option {
	return func(p *Panel) {
		p.deleteAction = action
	}
}

// NewPanel creates a panel that resolves stream URLs with resolver
func NewPanel(resolver Resolver, opts ...Option) *Panel {
	p := &Panel{resolver: resolver}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compose returns one viewer per camera, in roster order
func (p *Panel) Compose(cameras []models.Camera) []Viewer {
	viewers := make([]Viewer, 0, len(cameras))
	for _, cam := range cameras {
		viewers = append(viewers, p.viewer(cam))
	}
	return viewers
}

func (p *Panel) viewer(cam models.Camera) Viewer {
	v := Viewer{
		CameraID:      cam.ID,
		Name:          cam.Name,
		Location:      cam.Location,
		Protocol:      cam.Protocol.String(),
		DetectClasses: cam.DetectClasses,
	}
	if p.deleteAction != nil {
		v.DeleteAction = p.deleteAction(cam.ID)
	}

	src, err := p.resolver.ResolveStreamURL(cam.StreamURL)
	if err != nil {
		log.Warn().Err(err).Str("camera_id", cam.ID).Msg("Camera stream url not renderable")
		v.Err = err.Error()
		return v
	}
	v.Src = src
	return v
}

// Render writes the viewer grid. Each card is rendered on its own; a card that
// fails is replaced by a placeholder and the rest of the grid is unaffected.
func Render(w io.Writer, viewers []Viewer) error {
	var out bytes.Buffer
	out.WriteString(`<div class="cams-grid">`)
	for _, v := range viewers {
		var card bytes.Buffer
		if err := viewerTemplates.ExecuteTemplate(&card, "viewer", v); err != nil {
			log.Error().Err(err).Str("camera_id", v.CameraID).Msg("Failed to render viewer")
			card.Reset()
			if err := viewerTemplates.ExecuteTemplate(&card, "unrenderable", v); err != nil {
				continue
			}
		}
		out.Write(card.Bytes())
	}
	out.WriteString(`</div>`)

	_, err := w.Write(out.Bytes())
	return err
}

// HTML renders the viewer grid for embedding into a page template
func HTML(viewers []Viewer) template.HTML {
	var buf bytes.Buffer
	if err := Render(&buf, viewers); err != nil {
		return ""
	}
	// Card content was escaped by html/template above
	return template.HTML(buf.String()) //nolint:gosec
}
