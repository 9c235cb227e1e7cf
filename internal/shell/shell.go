// Package shell composes the add-camera form, the roster and the preview
// panel into one page model.
//
// Every user action is one transition: it runs its network call outside the
// shell lock, then records the outcome, and callers read the result as an
// immutable View snapshot. A reload that follows a create or delete is only
// issued once that call has returned.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/form"
	"camdetect-ui/internal/models"
	"camdetect-ui/internal/preview"
	"camdetect-ui/internal/registry"
	"camdetect-ui/internal/roster"
)

var (
	// ErrConfirmationPending is returned for mutations attempted while a delete confirmation is open
	ErrConfirmationPending = errors.New("a delete confirmation is waiting for an answer")
	// ErrNoPendingDelete is returned when resolving a confirmation that is not open
	ErrNoPendingDelete = errors.New("no delete confirmation is open for this camera")
	// ErrUnknownCamera is returned when deleting an id that is not in the roster
	ErrUnknownCamera = errors.New("camera is not in the roster")
)

// Registry is the backend the shell drives
type Registry interface {
	List(ctx context.Context) ([]models.Camera, error)
	Create(ctx context.Context, payload models.CameraPayload) (models.Camera, error)
	Remove(ctx context.Context, id string) error
	ResolveStreamURL(streamURL string) (string, error)
}

// EventPublisher receives roster changes made through the shell
type EventPublisher interface {
	PublishCameraEvent(event models.CameraEvent) error
}

// Confirmer answers a delete confirmation. It may block until the user
// answers or ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, cam models.Camera) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, cam models.Camera) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, cam models.Camera) (bool, error) {
	return f(ctx, cam)
}

// NoticeKind classifies a blocking notice
type NoticeKind string

const (
	NoticeCreateRejected NoticeKind = "create_rejected"
	NoticeCreateFailed   NoticeKind = "create_failed"
)

// Notice is a user-visible failure that stays up until dismissed
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// View is a snapshot of everything the page shows
type View struct {
	Draft         models.CameraDraft `json:"draft"`
	Invalid       []form.Field       `json:"invalid,omitempty"`
	Cameras       []models.Camera    `json:"cameras"`
	Viewers       []preview.Viewer   `json:"viewers"`
	Notice        *Notice            `json:"notice,omitempty"`
	ListError     string             `json:"list_error,omitempty"`
	DeleteError   string             `json:"delete_error,omitempty"`
	PendingDelete *models.Camera     `json:"pending_delete,omitempty"`
	Loaded        bool               `json:"loaded"`
	LoadedAt      time.Time          `json:"loaded_at,omitempty"`
}

// Option configures a Shell
type Option func(*Shell)

// WithEvents publishes roster changes to p
func WithEvents(p EventPublisher) Option {
	return func(s *Shell) {
		s.events = p
	}
}

// WithConsoleID tags published events with the console id
func WithConsoleID(id string) Option {
	return func(s *Shell) {
		s.consoleID = id
	}
}

// WithPanelOptions passes options to the preview panel
func WithPanelOptions(opts ...preview.Option) Option {
	return func(s *Shell) {
		s.panelOpts = append(s.panelOpts, opts...)
	}
}

// Shell is the camera management page model
type Shell struct {
	registry  Registry
	form      *form.Controller
	roster    *roster.Roster
	panel     *preview.Panel
	events    EventPublisher
	consoleID string
	panelOpts []preview.Option
	log       zerolog.Logger

	presentMu  sync.Mutex
	presented  bool
	presentErr error

	mu        sync.Mutex
	notice    *Notice
	invalid   []form.Field
	deleteErr error
	pending   *models.Camera
}

// New creates a shell on top of reg
func New(reg Registry, opts ...Option) *Shell {
	s := &Shell{
		registry: reg,
		form:     form.NewController(),
		roster:   roster.New(reg),
		log:      log.With().Str("component", "shell").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.panel = preview.NewPanel(reg, s.panelOpts...)
	return s
}

// Present performs the initial roster load. Once a load has completed, later
// calls return its result without loading again. A load abandoned because ctx
// was cancelled does not count; the next call tries again.
func (s *Shell) Present(ctx context.Context) error {
	s.presentMu.Lock()
	defer s.presentMu.Unlock()

	if s.presented {
		return s.presentErr
	}

	err := s.roster.Reload(ctx)
	if err != nil && ctx.Err() != nil {
		s.log.Debug().Err(err).Msg("Initial roster load cancelled, will retry on next presentation")
		return err
	}

	s.presented = true
	s.presentErr = err
	if err != nil {
		s.log.Warn().Err(err).Msg("Initial roster load failed")
	}
	return err
}

// Reload refreshes the roster on demand
func (s *Shell) Reload(ctx context.Context) error {
	return s.roster.Reload(ctx)
}

// SetField edits one draft field
func (s *Shell) SetField(field form.Field, value string) error {
	if err := s.form.Set(field, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.invalid = without(s.invalid, field)
	s.mu.Unlock()
	return nil
}

// Submit validates the draft and creates the camera. A validation failure
// makes no network call and triggers no reload. A rejected create raises a
// blocking notice and leaves the draft and roster untouched. A successful
// create resets the draft and then reloads the roster.
func (s *Shell) Submit(ctx context.Context) (models.Camera, error) {
	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		return models.Camera{}, ErrConfirmationPending
	}
	s.mu.Unlock()

	cam, err := s.form.Submit(ctx, s.registry)
	if err != nil {
		s.recordCreateFailure(err)
		return models.Camera{}, err
	}

	s.mu.Lock()
	s.invalid = nil
	s.mu.Unlock()

	s.log.Info().Str("camera_id", cam.ID).Str("name", cam.Name).Msg("Camera added")
	s.publish(models.CameraCreated, cam)

	if err := s.roster.Reload(ctx); err != nil {
		s.log.Warn().Err(err).Str("camera_id", cam.ID).Msg("Roster reload after create failed")
	}
	return cam, nil
}

func (s *Shell) recordCreateFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ve *form.ValidationError
	switch {
	case errors.As(err, &ve):
		s.invalid = ve.Fields
	case errors.Is(err, registry.ErrCreateRejected):
		s.notice = &Notice{Kind: NoticeCreateRejected, Message: "Failed to add camera"}
		s.log.Warn().Err(err).Msg("Camera create rejected by backend")
	default:
		s.notice = &Notice{Kind: NoticeCreateFailed, Message: fmt.Sprintf("Failed to add camera: %v", err)}
		s.log.Error().Err(err).Msg("Camera create failed")
	}
}

// DismissNotice clears the blocking notice
func (s *Shell) DismissNotice() {
	s.mu.Lock()
	s.notice = nil
	s.mu.Unlock()
}

// RequestDelete opens a delete confirmation for the camera with id. Only one
// confirmation can be open; until it is resolved no submit or other delete is
// accepted.
func (s *Shell) RequestDelete(id string) (*Confirmation, error) {
	cam, ok := s.roster.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCamera, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return nil, ErrConfirmationPending
	}
	s.pending = &cam
	return &Confirmation{shell: s, Camera: cam}, nil
}

// Pending returns the open confirmation, if any
func (s *Shell) Pending() (*Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, false
	}
	return &Confirmation{shell: s, Camera: *s.pending}, true
}

// Delete asks confirmer before deleting the camera with id. A declined or
// failed confirmation changes nothing.
func (s *Shell) Delete(ctx context.Context, id string, confirmer Confirmer) error {
	c, err := s.RequestDelete(id)
	if err != nil {
		return err
	}

	ok, err := confirmer.Confirm(ctx, c.Camera)
	if err != nil {
		_ = c.Resolve(ctx, false)
		return fmt.Errorf("delete confirmation: %w", err)
	}
	return c.Resolve(ctx, ok)
}

// Confirmation is an open delete confirmation
type Confirmation struct {
	shell  *Shell
	Camera models.Camera
}

// Resolve answers the confirmation. Declining only closes it. Confirming
// removes the camera and then reloads the roster whatever the delete outcome
// was; the delete error, if any, is returned and kept in the View.
func (c *Confirmation) Resolve(ctx context.Context, confirmed bool) error {
	return c.shell.resolveDelete(ctx, c.Camera.ID, confirmed)
}

func (s *Shell) resolveDelete(ctx context.Context, id string, confirmed bool) error {
	s.mu.Lock()
	if s.pending == nil || s.pending.ID != id {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoPendingDelete, id)
	}
	cam := *s.pending
	s.pending = nil
	s.mu.Unlock()

	if !confirmed {
		s.log.Debug().Str("camera_id", id).Msg("Delete declined")
		return nil
	}

	err := s.registry.Remove(ctx, id)

	s.mu.Lock()
	s.deleteErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Str("camera_id", id).Msg("Camera delete failed")
	} else {
		s.log.Info().Str("camera_id", id).Str("name", cam.Name).Msg("Camera deleted")
		s.publish(models.CameraDeleted, cam)
	}

	if reloadErr := s.roster.Reload(ctx); reloadErr != nil {
		s.log.Warn().Err(reloadErr).Str("camera_id", id).Msg("Roster reload after delete failed")
	}
	return err
}

func (s *Shell) publish(t models.CameraEventType, cam models.Camera) {
	if s.events == nil {
		return
	}

	event := models.CameraEvent{
		Type:      t,
		Camera:    cam,
		ConsoleID: s.consoleID,
		Timestamp: time.Now().UTC(),
	}
	if err := s.events.PublishCameraEvent(event); err != nil {
		s.log.Warn().Err(err).Str("camera_id", cam.ID).Str("event", string(t)).Msg("Failed to publish camera event")
	}
}

// View returns a snapshot of the page state
func (s *Shell) View() View {
	cameras := s.roster.Cameras()
	loaded, loadedAt := s.roster.Loaded()

	v := View{
		Draft:    s.form.Draft(),
		Cameras:  cameras,
		Viewers:  s.panel.Compose(cameras),
		Loaded:   loaded,
		LoadedAt: loadedAt,
	}
	if err := s.roster.Err(); err != nil {
		v.ListError = err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notice != nil {
		n := *s.notice
		v.Notice = &n
	}
	if len(s.invalid) > 0 {
		v.Invalid = append([]form.Field(nil), s.invalid...)
	}
	if s.deleteErr != nil {
		v.DeleteError = s.deleteErr.Error()
	}
	if s.pending != nil {
		p := *s.pending
		v.PendingDelete = &p
	}
	return v
}

func without(fields []form.Field, f form.Field) []form.Field {
	out := fields[:0:0]
	for _, field := range fields {
		if field != f {
			out = append(out, field)
		}
	}
	return out
}
