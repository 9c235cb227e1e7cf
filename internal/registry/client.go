// Package registry is the request layer for the camera registry REST API.
//
// Every operation is attempted exactly once. Retrying, and deciding what a
// failure means for the user, is left to the caller.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/models"
)

var (
	// ErrNetwork means the request never produced an HTTP response
	ErrNetwork = errors.New("registry unreachable")
	// ErrProtocol means the response was not what the API promises
	ErrProtocol = errors.New("malformed registry response")
	// ErrCreateRejected means the backend answered a create with a non-success status
	ErrCreateRejected = errors.New("camera create rejected")
	// ErrDeleteFailed means the backend did not confirm a delete
	ErrDeleteFailed = errors.New("camera delete failed")
)

const (
	camerasPath = "/api/cameras"
	cameraPath  = "/api/cameras/{id}"
	classesPath = "/api/classes"
)

// StatusError carries the HTTP status of a rejected call. It unwraps to the
// operation's sentinel error.
type StatusError struct {
	Op     string
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Config holds the registry client settings
type Config struct {
	BaseURL string
	// Timeout bounds a single request. Zero means no client side timeout.
	Timeout   time.Duration
	UserAgent string
	Metrics   *Metrics
}

// Client talks to the camera registry backend
type Client struct {
	http    *resty.Client
	baseURL *url.URL
	metrics *Metrics
	log     zerolog.Logger
}

// New creates a registry client for cfg.BaseURL
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid registry base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid registry base url %q: scheme and host required", cfg.BaseURL)
	}

	r := resty.New()
	r.SetBaseURL(base.String())
	r.SetHeader("Accept", "application/json")
	r.SetRetryCount(0)
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		r.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		http:    r,
		baseURL: base,
		metrics: cfg.Metrics,
		log:     log.With().Str("component", "registry").Str("backend", base.String()).Logger(),
	}, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches the full current roster
func (c *Client) List(ctx context.Context) ([]models.Camera, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		Get(camerasPath)
	if err != nil {
		c.metrics.observe("list", outcomeNetwork, start)
		return nil, fmt.Errorf("list cameras: %w: %w", ErrNetwork, err)
	}

	if resp.IsError() {
		c.metrics.observe("list", outcomeRejected, start)
		return nil, &StatusError{Op: "list cameras", Status: resp.StatusCode(), Err: ErrProtocol}
	}

	var cameras []models.Camera
	if err := json.Unmarshal(resp.Body(), &cameras); err != nil {
		c.metrics.observe("list", outcomeMalformed, start)
		return nil, fmt.Errorf("list cameras: %w: %w", ErrProtocol, err)
	}
	if cameras == nil {
		// JSON null or an empty body decodes to a nil slice; neither is an array
		c.metrics.observe("list", outcomeMalformed, start)
		return nil, fmt.Errorf("list cameras: %w: expected a JSON array", ErrProtocol)
	}

	c.metrics.observe("list", outcomeOK, start)
	c.log.Debug().Int("count", len(cameras)).Dur("duration", time.Since(start)).Msg("Camera list fetched")
	return cameras, nil
}

// Create submits a new camera. The payload classes must already be normalized.
// Any 2xx answer is a success; when its body is not a camera the returned
// Camera carries the payload fields and no id.
func (c *Client) Create(ctx context.Context, payload models.CameraPayload) (models.Camera, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(camerasPath)
	if err != nil {
		c.metrics.observe("create", outcomeNetwork, start)
		return models.Camera{}, fmt.Errorf("create camera: %w: %w", ErrNetwork, err)
	}

	if !resp.IsSuccess() {
		c.metrics.observe("create", outcomeRejected, start)
		c.log.Warn().
			Int("status", resp.StatusCode()).
			Str("name", payload.Name).
			Msg("Camera create rejected")
		return models.Camera{}, &StatusError{Op: "create camera", Status: resp.StatusCode(), Err: ErrCreateRejected}
	}

	// Success is decided by the status alone. The camera exists even when the
	// body cannot be decoded; the caller's reload picks it up.
	var cam models.Camera
	if err := json.Unmarshal(resp.Body(), &cam); err != nil {
		c.metrics.observe("create", outcomeMalformed, start)
		c.log.Warn().
			Err(err).
			Int("status", resp.StatusCode()).
			Str("name", payload.Name).
			Msg("Camera created but response body is not a camera")
		return models.Camera{
			Name:          payload.Name,
			Location:      payload.Location,
			Protocol:      payload.Protocol,
			Source:        payload.Source,
			DetectClasses: payload.DetectClasses,
		}, nil
	}

	c.metrics.observe("create", outcomeOK, start)
	c.log.Info().
		Str("camera_id", cam.ID).
		Str("name", cam.Name).
		Str("protocol", cam.Protocol.String()).
		Str("detect_classes", cam.DetectClasses).
		Msg("Camera created")
	return cam, nil
}

// Remove deletes the camera with the given id
func (c *Client) Remove(ctx context.Context, id string) error {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete(cameraPath)
	if err != nil {
		c.metrics.observe("delete", outcomeNetwork, start)
		return fmt.Errorf("delete camera %s: %w: %w", id, ErrNetwork, err)
	}

	if !resp.IsSuccess() {
		c.metrics.observe("delete", outcomeRejected, start)
		return &StatusError{Op: "delete camera " + id, Status: resp.StatusCode(), Err: ErrDeleteFailed}
	}

	// The body is optional; when it is a DeleteResult it must say ok
	var result struct {
		OK *bool `json:"ok"`
	}
	if body := resp.Body(); len(body) > 0 && json.Unmarshal(body, &result) == nil && result.OK != nil && !*result.OK {
		c.metrics.observe("delete", outcomeRejected, start)
		return &StatusError{Op: "delete camera " + id, Status: resp.StatusCode(), Err: ErrDeleteFailed}
	}

	c.metrics.observe("delete", outcomeOK, start)
	c.log.Info().Str("camera_id", id).Msg("Camera deleted")
	return nil
}

// GlobalClasses reads the backend-wide default detection classes
func (c *Client) GlobalClasses(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(classesPath)
	if err != nil {
		return "", fmt.Errorf("get classes: %w: %w", ErrNetwork, err)
	}
	if resp.IsError() {
		return "", &StatusError{Op: "get classes", Status: resp.StatusCode(), Err: ErrProtocol}
	}

	var cfg models.ClassesConfig
	if err := json.Unmarshal(resp.Body(), &cfg); err != nil {
		return "", fmt.Errorf("get classes: %w: %w", ErrProtocol, err)
	}
	return cfg.DetectClasses, nil
}

// SetGlobalClasses replaces the backend-wide default detection classes
func (c *Client) SetGlobalClasses(ctx context.Context, preset models.ClassPreset) (string, error) {
	if !preset.IsValid() {
		return "", fmt.Errorf("unknown class preset %q", preset)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ClassesConfig{DetectClasses: preset.DetectClasses()}).
		Post(classesPath)
	if err != nil {
		return "", fmt.Errorf("set classes: %w: %w", ErrNetwork, err)
	}
	if !resp.IsSuccess() {
		return "", &StatusError{Op: "set classes", Status: resp.StatusCode(), Err: ErrProtocol}
	}

	var cfg models.ClassesConfig
	if err := json.Unmarshal(resp.Body(), &cfg); err != nil {
		return "", fmt.Errorf("set classes: %w: %w", ErrProtocol, err)
	}
	return cfg.DetectClasses, nil
}

// ResolveStreamURL turns a backend stream_url into an absolute URL. Relative
// values (such as /api/stream/<id>) are resolved against the backend base URL;
// absolute ones are returned unchanged.
func (c *Client) ResolveStreamURL(streamURL string) (string, error) {
	if streamURL == "" {
		return "", errors.New("camera has no stream url")
	}

	ref, err := url.Parse(streamURL)
	if err != nil {
		return "", fmt.Errorf("invalid stream url %q: %w", streamURL, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}
