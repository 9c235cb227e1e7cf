// Package form owns the add-camera draft: field edits, validation,
// class normalization and the submit/reset lifecycle.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"camdetect-ui/internal/models"
)

// Field names a single editable draft field. Values match the JSON keys.
type Field string

const (
	FieldName          Field = "name"
	FieldLocation      Field = "location"
	FieldProtocol      Field = "protocol"
	FieldSource        Field = "source"
	FieldDetectClasses Field = "detect_classes"
)

// Fields lists every editable field in form order
func Fields() []Field {
	return []Field{FieldName, FieldLocation, FieldProtocol, FieldSource, FieldDetectClasses}
}

// ErrUnknownField is returned when an edit targets a field the draft does not have
var ErrUnknownField = errors.New("unknown draft field")

// ValidationError lists the draft fields that block submission
type ValidationError struct {
	Fields []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return "missing or invalid fields: " + strings.Join(names, ", ")
}

// Has reports whether f is among the failing fields
func (e *ValidationError) Has(f Field) bool {
	for _, field := range e.Fields {
		if field == f {
			return true
		}
	}
	return false
}

// Creator submits a normalized camera payload
type Creator interface {
	Create(ctx context.Context, payload models.CameraPayload) (models.Camera, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Apply returns a copy of d with exactly one field replaced
func Apply(d models.CameraDraft, field Field, value string) (models.CameraDraft, error) {
	switch field {
	case FieldName:
		d.Name = value
	case FieldLocation:
		d.Location = value
	case FieldProtocol:
		p := models.Protocol(value)
		if !p.IsValid() {
			return d, fmt.Errorf("unsupported protocol %q", value)
		}
		d.Protocol = p
	case FieldSource:
		d.Source = value
	case FieldDetectClasses:
		c := models.ClassPreset(value)
		if !c.IsValid() {
			return d, fmt.Errorf("unsupported detect classes %q", value)
		}
		d.DetectClasses = c
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return d, nil
}

// Validate checks that the draft may be submitted
func Validate(d models.CameraDraft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fieldFor(fe.StructField()))
	}
	return ve
}

func fieldFor(structField string) Field {
	switch structField {
	case "Name":
		return FieldName
	case "Location":
		return FieldLocation
	case "Protocol":
		return FieldProtocol
	case "Source":
		return FieldSource
	case "DetectClasses":
		return FieldDetectClasses
	default:
		return Field(strings.ToLower(structField))
	}
}

// Controller holds the draft for one add form. It is safe for concurrent use;
// every read hands out a value copy.
type Controller struct {
	mu    sync.Mutex
	draft models.CameraDraft
}

// NewController returns a controller holding the default draft
func NewController() *Controller {
	return &Controller{draft: models.DefaultDraft()}
}

// Draft returns the current draft
func (c *Controller) Draft() models.CameraDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Set updates one field of the draft and leaves the others untouched
func (c *Controller) Set(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Apply(c.draft, field, value)
	if err != nil {
		return err
	}
	c.draft = next
	return nil
}

// Reset restores the default draft
func (c *Controller) Reset() {
	c.mu.Lock()
	c.draft = models.DefaultDraft()
	c.mu.Unlock()
}

// Submit validates the draft and hands its normalized payload to creator.
// An invalid draft never reaches creator. On success the draft is reset; on
// failure it is left as the user entered it.
func (c *Controller) Submit(ctx context.Context, creator Creator) (models.Camera, error) {
	draft := c.Draft()
	if err := Validate(draft); err != nil {
		return models.Camera{}, err
	}

	cam, err := creator.Create(ctx, draft.Payload())
	if err != nil {
		return models.Camera{}, err
	}

	c.Reset()
	return cam, nil
}
