// Package roster caches the camera list last fetched from the registry.
//
// The roster is never patched locally: every change is followed by a full
// Reload, and the cached list is only as fresh as the latest reload.
package roster

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/models"
)

// Lister fetches the full camera list
type Lister interface {
	List(ctx context.Context) ([]models.Camera, error)
}

// Roster holds the last successfully fetched camera list
type Roster struct {
	lister Lister
	log    zerolog.Logger

	mu       sync.RWMutex
	cameras  []models.Camera
	err      error
	loaded   bool
	loadedAt time.Time
}

// New creates an empty roster backed by lister
func New(lister Lister) *Roster {
	return &Roster{
		lister: lister,
		log:    log.With().Str("component", "roster").Logger(),
	}
}

// Reload replaces the cached list with a fresh List call. On failure the
// previous list is kept and the error is recorded. A result that arrives after
// ctx is done is dropped. Concurrent reloads are not ordered: the one that
// resolves last wins.
func (r *Roster) Reload(ctx context.Context) error {
	cameras, err := r.lister.List(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		r.log.Debug().Err(ctxErr).Msg("Discarding reload result of a cancelled operation")
		return ctxErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.err = err
		r.log.Warn().Err(err).Int("cached", len(r.cameras)).Msg("Roster reload failed, keeping previous list")
		return err
	}

	r.cameras = cameras
	r.err = nil
	r.loaded = true
	r.loadedAt = time.Now()
	r.log.Debug().Int("count", len(cameras)).Msg("Roster reloaded")
	return nil
}

// Cameras returns a copy of the cached list
func (r *Roster) Cameras() []models.Camera {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Camera, len(r.cameras))
	copy(out, r.cameras)
	return out
}

// Find looks a camera up by id in the cached list
func (r *Roster) Find(id string) (models.Camera, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cam := range r.cameras {
		if cam.ID == id {
			return cam, true
		}
	}
	return models.Camera{}, false
}

// Err returns the error of the most recent reload, or nil if it succeeded
func (r *Roster) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Loaded reports whether any reload has succeeded yet and when the last one did
func (r *Roster) Loaded() (bool, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded, r.loadedAt
}
