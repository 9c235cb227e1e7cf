package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"camdetect-ui/internal/form"
	"camdetect-ui/internal/models"
	"camdetect-ui/internal/registry"
)

// memRegistry is an in-memory Registry that counts calls
type memRegistry struct {
	mu        sync.Mutex
	cameras   []models.Camera
	nextID    int
	listErr   error
	createErr error
	removeErr error
	calls     map[string]int
	payloads  []models.CameraPayload
}

func newMemRegistry(cams ...models.Camera) *memRegistry {
	return &memRegistry{cameras: cams, calls: map[string]int{}}
}

func (m *memRegistry) List(context.Context) ([]models.Camera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Camera(nil), m.cameras...), nil
}

func (m *memRegistry) Create(_ context.Context, p models.CameraPayload) (models.Camera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["create"]++
	m.payloads = append(m.payloads, p)
	if m.createErr != nil {
		return models.Camera{}, m.createErr
	}
	m.nextID++
	id := fmt.Sprintf("id%d", m.nextID)
	cam := models.Camera{
		ID: id, Name: p.Name, Location: p.Location, Protocol: p.Protocol,
		Source: p.Source, DetectClasses: p.DetectClasses, StreamURL: "/api/stream/" + id,
	}
	m.cameras = append(m.cameras, cam)
	return cam, nil
}

func (m *memRegistry) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++
	if m.removeErr != nil {
		return m.removeErr
	}
	for i, cam := range m.cameras {
		if cam.ID == id {
			m.cameras = append(m.cameras[:i], m.cameras[i+1:]...)
			return nil
		}
	}
	return registry.ErrDeleteFailed
}

func (m *memRegistry) ResolveStreamURL(streamURL string) (string, error) {
	if streamURL == "" {
		return "", errors.New("camera has no stream url")
	}
	return "http://backend" + streamURL, nil
}

func (m *memRegistry) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

type eventSink struct {
	mu     sync.Mutex
	events []models.CameraEvent
}

func (e *eventSink) PublishCameraEvent(event models.CameraEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func doorCam(t *testing.T, s *Shell) {
	t.Helper()
	require.NoError(t, s.SetField(form.FieldName, "Door Cam"))
	require.NoError(t, s.SetField(form.FieldLocation, "Lobby"))
	require.NoError(t, s.SetField(form.FieldProtocol, "rtsp"))
	require.NoError(t, s.SetField(form.FieldSource, "rtsp://cam1"))
	require.NoError(t, s.SetField(form.FieldDetectClasses, "all"))
}

var yard = models.Camera{ID: "y1", Name: "Yard", Protocol: models.ProtocolUSB, Source: "0", DetectClasses: "car", StreamURL: "/api/stream/y1"}

func TestPresent_LoadsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := newMemRegistry(yard)
	s := New(reg)

	require.NoError(t, s.Present(context.Background()))
	require.NoError(t, s.Present(context.Background()))

	assert.Equal(t, 1, reg.count("list"))
	v := s.View()
	assert.True(t, v.Loaded)
	assert.Equal(t, []models.Camera{yard}, v.Cameras)
	require.Len(t, v.Viewers, 1)
	assert.Equal(t, "http://backend/api/stream/y1", v.Viewers[0].Src)
}

func TestPresent_CancelledLoadIsRetried(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := newMemRegistry(yard)
	s := New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Present(ctx), context.Canceled)
	assert.False(t, s.View().Loaded)

	require.NoError(t, s.Present(context.Background()))
	require.NoError(t, s.Present(context.Background()))

	assert.Equal(t, 2, reg.count("list"))
	v := s.View()
	assert.True(t, v.Loaded)
	assert.Equal(t, []models.Camera{yard}, v.Cameras)
	assert.Empty(t, v.ListError)
}

func TestPresent_UnreachableBackendIsAnExplicitError(t *testing.T) {
	reg := newMemRegistry()
	reg.listErr = fmt.Errorf("list cameras: %w", registry.ErrNetwork)
	s := New(reg)

	err := s.Present(context.Background())
	assert.ErrorIs(t, err, registry.ErrNetwork)

	v := s.View()
	assert.Empty(t, v.Cameras)
	assert.False(t, v.Loaded)
	assert.Contains(t, v.ListError, "registry unreachable")
}

func TestSubmit_DoorCamScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := newMemRegistry()
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))
	doorCam(t, s)

	cam, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, reg.payloads, 1)
	assert.Equal(t, "person,car", reg.payloads[0].DetectClasses)
	assert.Equal(t, 2, reg.count("list"), "initial load plus reload after create")

	v := s.View()
	assert.Equal(t, models.DefaultDraft(), v.Draft)
	require.Len(t, v.Cameras, 1)
	assert.Equal(t, cam.ID, v.Cameras[0].ID)
	assert.Equal(t, "Door Cam", v.Cameras[0].Name)
	assert.Equal(t, "rtsp://cam1", v.Cameras[0].Source)
	assert.Equal(t, "person,car", v.Viewers[0].ClassesLabel())
	assert.Nil(t, v.Notice)
}

func TestSubmit_EmptySourceMakesNoCall(t *testing.T) {
	reg := newMemRegistry()
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))

	require.NoError(t, s.SetField(form.FieldName, "Door Cam"))
	before := s.View().Draft

	_, err := s.Submit(context.Background())

	var ve *form.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, reg.count("create"))
	assert.Equal(t, 1, reg.count("list"), "no reload after a validation failure")

	v := s.View()
	assert.Equal(t, before, v.Draft)
	assert.Equal(t, []form.Field{form.FieldSource}, v.Invalid)
	assert.Nil(t, v.Notice)

	require.NoError(t, s.SetField(form.FieldSource, "0"))
	assert.Empty(t, s.View().Invalid, "editing the field clears its marker")
}

func TestSubmit_RejectedRaisesBlockingNotice(t *testing.T) {
	reg := newMemRegistry(yard)
	reg.createErr = &registry.StatusError{Op: "create camera", Status: 409, Err: registry.ErrCreateRejected}
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))
	doorCam(t, s)
	before := s.View()

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, registry.ErrCreateRejected)

	v := s.View()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeCreateRejected, v.Notice.Kind)
	assert.Equal(t, before.Draft, v.Draft)
	assert.Equal(t, models.ClassAll, v.Draft.DetectClasses)
	assert.Equal(t, before.Cameras, v.Cameras)
	assert.Equal(t, 1, reg.count("list"), "no reload after a rejected create")

	s.DismissNotice()
	assert.Nil(t, s.View().Notice)
}

func TestSubmit_NetworkFailureRaisesNotice(t *testing.T) {
	reg := newMemRegistry()
	reg.createErr = fmt.Errorf("create camera: %w", registry.ErrNetwork)
	s := New(reg)
	doorCam(t, s)

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, registry.ErrNetwork)

	v := s.View()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeCreateFailed, v.Notice.Kind)
	assert.Equal(t, "Door Cam", v.Draft.Name)
}

func TestSubmit_PublishesEvent(t *testing.T) {
	reg := newMemRegistry()
	sink := &eventSink{}
	s := New(reg, WithEvents(sink), WithConsoleID("console-7"))
	doorCam(t, s)

	cam, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.Equal(t, models.CameraCreated, sink.events[0].Type)
	assert.Equal(t, cam.ID, sink.events[0].Camera.ID)
	assert.Equal(t, "console-7", sink.events[0].ConsoleID)
}

func TestDelete_ConfirmedRemovesAndReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := newMemRegistry(yard)
	sink := &eventSink{}
	s := New(reg, WithEvents(sink))
	require.NoError(t, s.Present(context.Background()))

	var asked models.Camera
	err := s.Delete(context.Background(), "y1", ConfirmFunc(func(_ context.Context, cam models.Camera) (bool, error) {
		asked = cam
		return true, nil
	}))
	require.NoError(t, err)

	assert.Equal(t, "Yard", asked.Name)
	assert.Equal(t, 1, reg.count("delete"))
	assert.Equal(t, 2, reg.count("list"))

	v := s.View()
	assert.Empty(t, v.Cameras)
	assert.Empty(t, v.DeleteError)
	assert.Nil(t, v.PendingDelete)
	require.Len(t, sink.events, 1)
	assert.Equal(t, models.CameraDeleted, sink.events[0].Type)
}

func TestDelete_DeclinedChangesNothing(t *testing.T) {
	reg := newMemRegistry(yard)
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))

	err := s.Delete(context.Background(), "y1", ConfirmFunc(func(context.Context, models.Camera) (bool, error) {
		return false, nil
	}))
	require.NoError(t, err)

	assert.Equal(t, 0, reg.count("delete"))
	assert.Equal(t, 1, reg.count("list"))
	assert.Equal(t, []models.Camera{yard}, s.View().Cameras)
	assert.Nil(t, s.View().PendingDelete)
}

func TestDelete_FailedDeleteStillReloads(t *testing.T) {
	reg := newMemRegistry(yard)
	reg.removeErr = &registry.StatusError{Op: "delete camera y1", Status: 500, Err: registry.ErrDeleteFailed}
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))

	c, err := s.RequestDelete("y1")
	require.NoError(t, err)

	err = c.Resolve(context.Background(), true)
	assert.ErrorIs(t, err, registry.ErrDeleteFailed)
	assert.Equal(t, 2, reg.count("list"), "reload runs regardless of the delete outcome")

	v := s.View()
	assert.Equal(t, []models.Camera{yard}, v.Cameras, "camera that failed to delete is shown again")
	assert.Contains(t, v.DeleteError, "camera delete failed")
}

func TestDelete_ConfirmerErrorDeclines(t *testing.T) {
	reg := newMemRegistry(yard)
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Delete(ctx, "y1", ConfirmFunc(func(ctx context.Context, _ models.Camera) (bool, error) {
		return false, ctx.Err()
	}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, reg.count("delete"))
	assert.Nil(t, s.View().PendingDelete)
}

func TestDelete_UnknownCamera(t *testing.T) {
	s := New(newMemRegistry(yard))
	require.NoError(t, s.Present(context.Background()))

	_, err := s.RequestDelete("nope")
	assert.ErrorIs(t, err, ErrUnknownCamera)
}

func TestConfirmationGatesOtherMutations(t *testing.T) {
	reg := newMemRegistry(yard, models.Camera{ID: "g2", Name: "Gate", Source: "1", Protocol: models.ProtocolUSB, StreamURL: "/api/stream/g2"})
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))

	c, err := s.RequestDelete("y1")
	require.NoError(t, err)

	_, err = s.RequestDelete("g2")
	assert.ErrorIs(t, err, ErrConfirmationPending)

	doorCam(t, s)
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrConfirmationPending)
	assert.Equal(t, 0, reg.count("create"))

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, "y1", pending.Camera.ID)
	assert.Equal(t, "y1", s.View().PendingDelete.ID)

	require.NoError(t, c.Resolve(context.Background(), false))
	assert.ErrorIs(t, c.Resolve(context.Background(), true), ErrNoPendingDelete, "a confirmation resolves once")

	_, err = s.Submit(context.Background())
	assert.NoError(t, err)
}

func TestConcurrentSubmitsBothReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := newMemRegistry()
	s := New(reg)
	require.NoError(t, s.Present(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := New(reg)
			assert.NoError(t, sub.SetField(form.FieldName, "cam"))
			assert.NoError(t, sub.SetField(form.FieldSource, "0"))
			_, err := sub.Submit(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, reg.count("create"))
	assert.Equal(t, 3, reg.count("list"))

	require.NoError(t, s.Reload(context.Background()))
	assert.Len(t, s.View().Cameras, 2)
}

func TestView_IsASnapshot(t *testing.T) {
	s := New(newMemRegistry(yard))
	require.NoError(t, s.Present(context.Background()))

	v := s.View()
	v.Cameras[0].Name = "changed"
	v.Draft.Name = "changed"

	fresh := s.View()
	assert.Equal(t, "Yard", fresh.Cameras[0].Name)
	assert.Empty(t, fresh.Draft.Name)
	assert.WithinDuration(t, time.Now(), fresh.LoadedAt, time.Minute)
}
