package probe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stupside/prism/internal/capability"
)

// Window is the window, screen and navigator record.
type Window struct {
	DevicePixelRatio float64               `json:"devicePixelRatio"`
	Screen           capability.ScreenInfo `json:"screen"`
	Navigator        Navigator             `json:"navigator"`
	IndexedDB        bool                  `json:"indexedDB"`
	LocalStorage     bool                  `json:"localStorage"`
}

// Navigator is the navigator-level record.
type Navigator struct {
	NetworkInformation *capability.NetworkInformation `json:"networkInformation"`
	// DoNotTrack is always empty; reading it is unreliable across engines.
	DoNotTrack          string       `json:"doNotTrack"`
	Geolocation         bool         `json:"geolocation"`
	GamepadIDs          []string     `json:"gamepadIds"`
	HardwareConcurrency float64      `json:"hardwareConcurrency"`
	Language            string       `json:"language"`
	Languages           []string     `json:"languages"`
	MaxTouchPoints      int          `json:"maxTouchPoints"`
	AudioInput          int          `json:"audioInput"`
	AudioOutput         int          `json:"audioOutput"`
	VideoInput          int          `json:"videoInput"`
	Platform            string       `json:"platform"`
	UserAgent           string       `json:"userAgent"`
	PropertyCount       int          `json:"propertyCount"`
	Permissions         *Permissions `json:"permissions"`
}

// ReadWindow assembles the window record. It is nil when the window, the
// required screen fields or the navigator cannot be read.
func ReadWindow(ctx context.Context, env *Env) (*Window, error) {
	win, err := env.Root.Window(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading window: %w", err)
	}
	screen, err := env.Root.Screen(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading screen: %w", err)
	}
	nav, err := ReadNavigator(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("reading navigator: %w", err)
	}

	return &Window{
		DevicePixelRatio: win.DevicePixelRatio,
		Screen:           screen,
		Navigator:        *nav,
		IndexedDB:        win.IndexedDB,
		LocalStorage:     win.LocalStorage,
	}, nil
}

// ReadNavigator reads navigator metadata. Individual string readings fall
// back to empty values; only a missing navigator fails the record.
func ReadNavigator(ctx context.Context, env *Env) (*Navigator, error) {
	nav, err := env.Root.Navigator(ctx)
	if err != nil {
		return nil, err
	}

	out := &Navigator{
		Geolocation:         nav.HasGeolocation(),
		GamepadIDs:          []string{},
		HardwareConcurrency: nav.HardwareConcurrency(),
		Language:            orEmpty(ctx, "language", nav.Language),
		Languages:           nav.Languages(),
		MaxTouchPoints:      nav.MaxTouchPoints(),
		Platform:            orEmpty(ctx, "platform", nav.Platform),
		UserAgent:           orEmpty(ctx, "userAgent", nav.UserAgent),
		PropertyCount:       nav.PropertyCount(),
	}

	if conn, err := nav.Connection(); err != nil {
		slog.DebugContext(ctx, "network information unavailable", "error", err)
	} else {
		out.NetworkInformation = &conn
	}

	if ids, err := nav.Gamepads(); err != nil {
		slog.DebugContext(ctx, "gamepads unavailable", "error", err)
	} else {
		out.GamepadIDs = ids
	}

	out.AudioInput, out.AudioOutput, out.VideoInput = countDevices(ctx, env.Root)
	out.Permissions = Collect(ctx, "permissions", env, ReadPermissions)

	return out, nil
}

// countDevices tallies enumerated devices by kind. Kinds other than audio
// input, audio output and video input are not counted.
func countDevices(ctx context.Context, root capability.Root) (audioIn, audioOut, videoIn int) {
	md, err := root.MediaDevices(ctx)
	if err != nil {
		slog.DebugContext(ctx, "media devices unavailable", "error", err)
		return 0, 0, 0
	}
	kinds, err := md.Enumerate(ctx)
	if err != nil {
		slog.DebugContext(ctx, "enumerating media devices", "error", err)
		return 0, 0, 0
	}
	for _, k := range kinds {
		switch k {
		case capability.AudioInput:
			audioIn++
		case capability.AudioOutput:
			audioOut++
		case capability.VideoInput:
			videoIn++
		}
	}
	return audioIn, audioOut, videoIn
}

func orEmpty(ctx context.Context, name string, read func() (string, error)) string {
	s, err := read()
	if err != nil {
		slog.DebugContext(ctx, "navigator reading unavailable", "field", name, "error", err)
		return ""
	}
	return s
}
