package capability

import "context"

// TextElement is an inline element used for font measurement.
// OffsetSize reports zeros while the element is detached.
type TextElement interface {
	Releaser

	SetStyle(ctx context.Context, property, value string) error
	SetText(ctx context.Context, text string) error
	Attach(ctx context.Context) error
	Detach(ctx context.Context) error
	OffsetSize(ctx context.Context) (width, height int, err error)
}

// WindowInfo holds window-level readings.
type WindowInfo struct {
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	IndexedDB        bool    `json:"indexedDB"`
	LocalStorage     bool    `json:"localStorage"`
}

// ScreenInfo holds screen geometry. The Avail* fields and ColorGamut are zero
// when the host does not report them.
type ScreenInfo struct {
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	ColorDepth  int    `json:"colorDepth"`
	PixelDepth  int    `json:"pixelDepth"`
	ColorGamut  string `json:"colorGamut"`
	AvailHeight int    `json:"availHeight"`
	AvailWidth  int    `json:"availWidth"`
	AvailTop    int    `json:"availTop"`
	AvailLeft   int    `json:"availLeft"`
}

// NetworkInformation mirrors navigator.connection. Absent attributes are nil.
type NetworkInformation struct {
	Downlink      *float64 `json:"downlink"`
	DownlinkMax   *float64 `json:"downlinkMax"`
	EffectiveType *string  `json:"effectiveType"`
	RTT           *float64 `json:"rtt"`
	SaveData      *bool    `json:"saveData"`
	Type          *string  `json:"type"`
}

// Navigator exposes navigator metadata.
type Navigator interface {
	UserAgent() (string, error)
	Platform() (string, error)
	Language() (string, error)
	Languages() []string
	HardwareConcurrency() float64
	MaxTouchPoints() int
	HasGeolocation() bool
	// Gamepads returns the ids of connected gamepads; empty slots yield "".
	Gamepads() ([]string, error)
	Connection() (NetworkInformation, error)
	// PropertyCount is the number of enumerable keys of the navigator prototype.
	PropertyCount() int
}

// PermissionState is the resolved state of one permission.
type PermissionState string

const (
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
	PermissionPrompt      PermissionState = "prompt"
	PermissionUnavailable PermissionState = "unavailable"
)

// PermissionService answers permission-state queries by name.
type PermissionService interface {
	Query(ctx context.Context, name string) (PermissionState, error)
}

// DeviceKind is a media device kind as reported by enumeration.
type DeviceKind string

const (
	AudioInput  DeviceKind = "audioinput"
	AudioOutput DeviceKind = "audiooutput"
	VideoInput  DeviceKind = "videoinput"
)

// MediaDevices enumerates media devices.
type MediaDevices interface {
	Enumerate(ctx context.Context) ([]DeviceKind, error)
}
