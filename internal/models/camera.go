package models

// Protocol is the transport used to reach a camera's video feed
type Protocol string

const (
	ProtocolUSB  Protocol = "usb"
	ProtocolRTSP Protocol = "rtsp"
	ProtocolRTMP Protocol = "rtmp"
	ProtocolHTTP Protocol = "http"
	ProtocolHLS  Protocol = "hls"
)

// String returns the string representation of Protocol
func (p Protocol) String() string {
	return string(p)
}

// IsValid checks if the protocol is one of the supported values
func (p Protocol) IsValid() bool {
	switch p {
	case ProtocolUSB, ProtocolRTSP, ProtocolRTMP, ProtocolHTTP, ProtocolHLS:
		return true
	default:
		return false
	}
}

// Label is the human readable name shown in the protocol selector
func (p Protocol) Label() string {
	switch p {
	case ProtocolUSB:
		return "USB/Webcam"
	case ProtocolRTSP:
		return "RTSP"
	case ProtocolRTMP:
		return "RTMP"
	case ProtocolHTTP:
		return "HTTP"
	case ProtocolHLS:
		return "HLS (.m3u8)"
	default:
		return string(p)
	}
}

// Protocols lists the selectable protocols in display order
func Protocols() []Protocol {
	return []Protocol{ProtocolUSB, ProtocolRTSP, ProtocolRTMP, ProtocolHTTP, ProtocolHLS}
}

// ClassPreset is the detection class choice offered by the form.
// Only the three presets exist; free-form class sets cannot be entered.
type ClassPreset string

const (
	ClassPerson ClassPreset = "person"
	ClassCar    ClassPreset = "car"
	ClassAll    ClassPreset = "all"
)

// Wire values of detect_classes as sent to and stored by the backend
const (
	DetectClassesUnset     = ""
	DetectClassesPerson    = "person"
	DetectClassesCar       = "car"
	DetectClassesPersonCar = "person,car"
)

func (c ClassPreset) String() string {
	return string(c)
}

// IsValid checks if the preset is one of person, car or all
func (c ClassPreset) IsValid() bool {
	switch c {
	case ClassPerson, ClassCar, ClassAll:
		return true
	default:
		return false
	}
}

// Label is the human readable name shown in the class selector
func (c ClassPreset) Label() string {
	switch c {
	case ClassPerson:
		return "Person"
	case ClassCar:
		return "Car"
	case ClassAll:
		return "All (Person + Car)"
	default:
		return string(c)
	}
}

// DetectClasses translates the preset into its wire value. "all" expands to
// "person,car"; every other preset passes through unchanged.
func (c ClassPreset) DetectClasses() string {
	if c == ClassAll {
		return DetectClassesPersonCar
	}
	return string(c)
}

// ClassPresets lists the selectable presets in display order
func ClassPresets() []ClassPreset {
	return []ClassPreset{ClassPerson, ClassCar, ClassAll}
}

// Camera is a registered video source as returned by the registry backend.
// The client holds read-only copies; id and stream_url are backend assigned.
type Camera struct {
	ID            string   `json:"id" example:"3f9a1c2b"`
	Name          string   `json:"name" example:"Door Cam"`
	Location      string   `json:"location" example:"Lobby"`
	Protocol      Protocol `json:"protocol" example:"rtsp"`
	Source        string   `json:"source" example:"rtsp://cam1"`
	DetectClasses string   `json:"detect_classes" example:"person,car"`
	StreamURL     string   `json:"stream_url" example:"/api/stream/3f9a1c2b"`
}

// CameraDraft is the editable camera configuration owned by the add form
type CameraDraft struct {
	Name          string      `json:"name" validate:"required"`
	Location      string      `json:"location"`
	Protocol      Protocol    `json:"protocol" validate:"oneof=usb rtsp rtmp http hls"`
	Source        string      `json:"source" validate:"required"`
	DetectClasses ClassPreset `json:"detect_classes" validate:"oneof=person car all"`
}

// DefaultDraft is the shape of a fresh add form
func DefaultDraft() CameraDraft {
	return CameraDraft{
		Protocol:      ProtocolRTSP,
		DetectClasses: ClassPerson,
	}
}

// Payload builds the request body for camera creation, normalizing the class preset
func (d CameraDraft) Payload() CameraPayload {
	return CameraPayload{
		Name:          d.Name,
		Location:      d.Location,
		Protocol:      d.Protocol,
		Source:        d.Source,
		DetectClasses: d.DetectClasses.DetectClasses(),
	}
}

// CameraPayload is the POST /api/cameras body
type CameraPayload struct {
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Protocol      Protocol `json:"protocol"`
	Source        string   `json:"source"`
	DetectClasses string   `json:"detect_classes"`
}

// DeleteResult is the optional body returned by DELETE /api/cameras/{id}
type DeleteResult struct {
	OK bool `json:"ok"`
}

// ClassesConfig is the global detection class setting exposed on /api/classes
type ClassesConfig struct {
	DetectClasses string `json:"detect_classes" example:"all"`
}
