package messaging

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camdetect-ui/internal/models"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	connected bool
	failWith  error
	drainErr  error
	closed    bool
	drained   bool
	msgs      []published
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }
func (f *fakeConn) Drain() error      { f.drained = true; return f.drainErr }
func (f *fakeConn) Close()            { f.closed = true }

func TestSubjectNaming(t *testing.T) {
	s := newService(&fakeConn{}, "site1.cameras")
	assert.Equal(t, "site1.cameras.created", s.Subject(models.CameraCreated))
	assert.Equal(t, "site1.cameras.deleted", s.Subject(models.CameraDeleted))

	s = newService(&fakeConn{}, "")
	assert.Equal(t, "cameras.created", s.Subject(models.CameraCreated))
}

func TestPublishCameraEvent(t *testing.T) {
	fc := &fakeConn{connected: true}
	s := newService(fc, "cameras")

	event := models.CameraEvent{
		Type:      models.CameraCreated,
		Camera:    models.Camera{ID: "a1b2c3d4", Name: "Door Cam", Protocol: models.ProtocolRTSP, Source: "rtsp://cam1"},
		ConsoleID: "console-1",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.PublishCameraEvent(event))

	require.Len(t, fc.msgs, 1)
	assert.Equal(t, "cameras.created", fc.msgs[0].subject)

	var got models.CameraEvent
	require.NoError(t, json.Unmarshal(fc.msgs[0].data, &got))
	assert.Equal(t, event, got)
}

func TestPublishWhileDisconnected(t *testing.T) {
	fc := &fakeConn{connected: false}
	s := newService(fc, "cameras")

	err := s.PublishCameraEvent(models.CameraEvent{Type: models.CameraDeleted})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, fc.msgs)
}

func TestPublishError(t *testing.T) {
	boom := errors.New("slow consumer")
	s := newService(&fakeConn{connected: true, failWith: boom}, "cameras")

	err := s.PublishCameraEvent(models.CameraEvent{Type: models.CameraDeleted})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cameras.deleted")
}

func TestShutdownFallsBackToClose(t *testing.T) {
	fc := &fakeConn{connected: true, drainErr: errors.New("already closed")}
	s := newService(fc, "cameras")

	require.NoError(t, s.Shutdown(t.Context()))
	assert.True(t, fc.drained)
	assert.True(t, fc.closed)
}
