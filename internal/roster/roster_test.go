package roster

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camdetect-ui/internal/models"
)

type stubLister struct {
	mu      sync.Mutex
	results [][]models.Camera
	errs    []error
	calls   int
}

func (s *stubLister) List(context.Context) ([]models.Camera, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return s.results[i], nil
}

func cams(ids ...string) []models.Camera {
	out := make([]models.Camera, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Camera{ID: id, Name: "cam " + id, Source: "0", Protocol: models.ProtocolUSB})
	}
	return out
}

func TestReload_ReplacesWholeList(t *testing.T) {
	lister := &stubLister{results: [][]models.Camera{cams("a", "b"), cams("c")}}
	r := New(lister)

	loaded, _ := r.Loaded()
	assert.False(t, loaded)
	assert.Empty(t, r.Cameras())

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, cams("a", "b"), r.Cameras())

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, cams("c"), r.Cameras())

	_, found := r.Find("a")
	assert.False(t, found)
	cam, found := r.Find("c")
	assert.True(t, found)
	assert.Equal(t, "cam c", cam.Name)

	loaded, at := r.Loaded()
	assert.True(t, loaded)
	assert.False(t, at.IsZero())
}

func TestReload_FailureKeepsPreviousList(t *testing.T) {
	boom := errors.New("unreachable")
	lister := &stubLister{
		results: [][]models.Camera{cams("a"), nil, cams("b")},
		errs:    []error{nil, boom, nil},
	}
	r := New(lister)

	require.NoError(t, r.Reload(context.Background()))

	err := r.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Err(), boom)
	assert.Equal(t, cams("a"), r.Cameras())

	require.NoError(t, r.Reload(context.Background()))
	assert.NoError(t, r.Err())
	assert.Equal(t, cams("b"), r.Cameras())
}

func TestReload_InitialFailureLeavesRosterEmptyWithError(t *testing.T) {
	boom := errors.New("unreachable")
	r := New(&stubLister{errs: []error{boom}})

	assert.Error(t, r.Reload(context.Background()))
	assert.Empty(t, r.Cameras())
	assert.ErrorIs(t, r.Err(), boom)
}

func TestReload_DropsResultOfCancelledContext(t *testing.T) {
	lister := &stubLister{results: [][]models.Camera{cams("a"), cams("b")}}
	r := New(lister)
	require.NoError(t, r.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Reload(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, cams("a"), r.Cameras())
	assert.NoError(t, r.Err())
}

func TestCameras_ReturnsCopy(t *testing.T) {
	r := New(&stubLister{results: [][]models.Camera{cams("a")}})
	require.NoError(t, r.Reload(context.Background()))

	got := r.Cameras()
	got[0].Name = "changed"

	assert.Equal(t, "cam a", r.Cameras()[0].Name)
}
