package models

import "time"

// CameraEventType identifies a roster change
type CameraEventType string

const (
	CameraCreated CameraEventType = "created"
	CameraDeleted CameraEventType = "deleted"
)

// CameraEvent announces a roster change made from this console
type CameraEvent struct {
	Type      CameraEventType `json:"type"`
	Camera    Camera          `json:"camera"`
	ConsoleID string          `json:"console_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
