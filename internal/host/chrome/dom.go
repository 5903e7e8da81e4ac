package chrome

import (
	"context"
	"errors"
	"fmt"

	"github.com/stupside/prism/internal/capability"
)

type textElement struct {
	handle
}

func (h *Host) NewTextElement(ctx context.Context) (capability.TextElement, error) {
	var id int
	if err := h.call(ctx, &id, "text"); err != nil {
		return nil, err
	}
	return &textElement{handle{host: h, id: id}}, nil
}

func (t *textElement) SetStyle(ctx context.Context, property, value string) error {
	var ok bool
	return t.host.call(ctx, &ok, "textStyle", t.id, property, value)
}

func (t *textElement) SetText(ctx context.Context, text string) error {
	var ok bool
	return t.host.call(ctx, &ok, "textSet", t.id, text)
}

func (t *textElement) Attach(ctx context.Context) error {
	var ok bool
	return t.host.call(ctx, &ok, "textAttach", t.id)
}

func (t *textElement) Detach(ctx context.Context) error {
	var ok bool
	return t.host.call(ctx, &ok, "textDetach", t.id)
}

func (t *textElement) OffsetSize(ctx context.Context) (int, int, error) {
	var size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	err := t.host.call(ctx, &size, "textSize", t.id)
	return size.Width, size.Height, err
}

func (h *Host) Window(ctx context.Context) (capability.WindowInfo, error) {
	var w capability.WindowInfo
	err := h.call(ctx, &w, "windowInfo")
	return w, err
}

func (h *Host) Screen(ctx context.Context) (capability.ScreenInfo, error) {
	var s capability.ScreenInfo
	err := h.call(ctx, &s, "screen")
	return s, err
}

// reading is a page-side property read that may have thrown.
type reading[T any] struct {
	OK    bool   `json:"ok"`
	Value T      `json:"v"`
	Err   string `json:"err"`
}

func (r reading[T]) get(name string) (T, error) {
	if !r.OK {
		var zero T
		if r.Err == "" {
			return zero, fmt.Errorf("%s: %w", name, capability.ErrUnsupported)
		}
		return zero, fmt.Errorf("%s: %w", name, errors.New(r.Err))
	}
	return r.Value, nil
}

// navigatorSnapshot is read in one evaluation; the Navigator methods answer
// from it.
type navigatorSnapshot struct {
	UserAgentRead  reading[string]                `json:"userAgent"`
	PlatformRead   reading[string]                `json:"platform"`
	LanguageRead   reading[string]                `json:"language"`
	LanguagesValue []string                       `json:"languages"`
	Concurrency    float64                        `json:"hardwareConcurrency"`
	TouchPoints    int                            `json:"maxTouchPoints"`
	Geolocation    bool                           `json:"geolocation"`
	GamepadsRead   reading[[]string]              `json:"gamepads"`
	Network        *capability.NetworkInformation `json:"connection"`
	Properties     int                            `json:"propertyCount"`
}

func (h *Host) Navigator(ctx context.Context) (capability.Navigator, error) {
	var n navigatorSnapshot
	if err := h.call(ctx, &n, "navigator"); err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *navigatorSnapshot) UserAgent() (string, error)   { return n.UserAgentRead.get("userAgent") }
func (n *navigatorSnapshot) Platform() (string, error)    { return n.PlatformRead.get("platform") }
func (n *navigatorSnapshot) Language() (string, error)    { return n.LanguageRead.get("language") }
func (n *navigatorSnapshot) Languages() []string          { return n.LanguagesValue }
func (n *navigatorSnapshot) HardwareConcurrency() float64 { return n.Concurrency }
func (n *navigatorSnapshot) MaxTouchPoints() int          { return n.TouchPoints }
func (n *navigatorSnapshot) HasGeolocation() bool         { return n.Geolocation }
func (n *navigatorSnapshot) Gamepads() ([]string, error)  { return n.GamepadsRead.get("gamepads") }
func (n *navigatorSnapshot) PropertyCount() int           { return n.Properties }

func (n *navigatorSnapshot) Connection() (capability.NetworkInformation, error) {
	if n.Network == nil {
		return capability.NetworkInformation{}, fmt.Errorf("connection: %w", capability.ErrUnsupported)
	}
	return *n.Network, nil
}

type permissionService struct {
	host *Host
}

func (h *Host) Permissions(ctx context.Context) (capability.PermissionService, error) {
	var ok bool
	if err := h.call(ctx, &ok, "hasPermissions"); err != nil {
		return nil, err
	}
	return &permissionService{host: h}, nil
}

func (p *permissionService) Query(ctx context.Context, name string) (capability.PermissionState, error) {
	var state string
	if err := p.host.call(ctx, &state, "permission", name); err != nil {
		return "", err
	}
	return capability.PermissionState(state), nil
}

type mediaDevices struct {
	host *Host
}

func (h *Host) MediaDevices(ctx context.Context) (capability.MediaDevices, error) {
	var ok bool
	if err := h.call(ctx, &ok, "hasDevices"); err != nil {
		return nil, err
	}
	return &mediaDevices{host: h}, nil
}

func (m *mediaDevices) Enumerate(ctx context.Context) ([]capability.DeviceKind, error) {
	var kinds []string
	if err := m.host.call(ctx, &kinds, "devices"); err != nil {
		return nil, err
	}
	out := make([]capability.DeviceKind, len(kinds))
	for i, k := range kinds {
		out[i] = capability.DeviceKind(k)
	}
	return out, nil
}
