package shell

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camdetect-ui/internal/form"
	"camdetect-ui/internal/models"
	"camdetect-ui/internal/registry"
	"camdetect-ui/internal/registry/registrytest"
)

func newBackendShell(t *testing.T, seed ...models.Camera) (*Shell, *registrytest.Backend) {
	t.Helper()

	backend := registrytest.NewBackend(seed...)
	t.Cleanup(backend.Close)

	client, err := registry.New(registry.Config{BaseURL: backend.URL})
	require.NoError(t, err)

	s := New(client)
	require.NoError(t, s.Present(context.Background()))
	return s, backend
}

func TestIntegration_CreateThenDelete(t *testing.T) {
	s, backend := newBackendShell(t)
	doorCam(t, s)

	cam, err := s.Submit(context.Background())
	require.NoError(t, err)

	received := backend.Received()
	require.Len(t, received, 1)
	assert.Equal(t, models.CameraPayload{
		Name:          "Door Cam",
		Location:      "Lobby",
		Protocol:      models.ProtocolRTSP,
		Source:        "rtsp://cam1",
		DetectClasses: "person,car",
	}, received[0])

	v := s.View()
	require.Len(t, v.Viewers, 1)
	assert.Equal(t, backend.URL+"/api/stream/"+cam.ID, v.Viewers[0].Src)
	assert.Equal(t, "person,car", v.Viewers[0].ClassesLabel())

	require.NoError(t, s.Delete(context.Background(), cam.ID, ConfirmFunc(func(context.Context, models.Camera) (bool, error) {
		return true, nil
	})))

	assert.Empty(t, backend.Cameras())
	for _, c := range s.View().Cameras {
		assert.NotEqual(t, cam.ID, c.ID)
	}
}

func TestIntegration_RejectedCreate(t *testing.T) {
	s, backend := newBackendShell(t)
	backend.RejectCreate = http.StatusConflict
	doorCam(t, s)

	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, registry.ErrCreateRejected)

	v := s.View()
	require.NotNil(t, v.Notice)
	assert.Equal(t, "Door Cam", v.Draft.Name)
	assert.Equal(t, models.ClassAll, v.Draft.DetectClasses)
	assert.Empty(t, v.Cameras)
	assert.Equal(t, 1, backend.Calls("list"))
}

func TestIntegration_CreateWithEmptyBodyStillReloads(t *testing.T) {
	s, backend := newBackendShell(t)
	backend.EmptyCreateBody = true
	doorCam(t, s)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	v := s.View()
	assert.Nil(t, v.Notice)
	assert.Equal(t, models.DefaultDraft(), v.Draft)
	assert.Equal(t, 2, backend.Calls("list"))
	require.Len(t, v.Cameras, 1)
	assert.Equal(t, "Door Cam", v.Cameras[0].Name)
	assert.NotEmpty(t, v.Cameras[0].ID)
}

func TestIntegration_ValidationBlocksNetwork(t *testing.T) {
	s, backend := newBackendShell(t)
	require.NoError(t, s.SetField(form.FieldName, "Door Cam"))

	_, err := s.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, 0, backend.Calls("create"))
	assert.Equal(t, 1, backend.Calls("list"))
}

func TestIntegration_FailedDeleteReshowsCamera(t *testing.T) {
	seed := models.Camera{ID: "y1", Name: "Yard", Protocol: models.ProtocolUSB, Source: "0", StreamURL: "/api/stream/y1"}
	s, backend := newBackendShell(t, seed)
	backend.FailDelete = true

	err := s.Delete(context.Background(), "y1", ConfirmFunc(func(context.Context, models.Camera) (bool, error) {
		return true, nil
	}))
	assert.ErrorIs(t, err, registry.ErrDeleteFailed)

	assert.Equal(t, 2, backend.Calls("list"))
	v := s.View()
	require.Len(t, v.Cameras, 1)
	assert.Equal(t, "y1", v.Cameras[0].ID)
	assert.NotEmpty(t, v.DeleteError)
}

func TestIntegration_ListFailureIsVisible(t *testing.T) {
	backend := registrytest.NewBackend()
	t.Cleanup(backend.Close)
	backend.FailList = true

	client, err := registry.New(registry.Config{BaseURL: backend.URL})
	require.NoError(t, err)

	s := New(client)
	err = s.Present(context.Background())
	assert.ErrorIs(t, err, registry.ErrProtocol)
	assert.NotEmpty(t, s.View().ListError)
}
