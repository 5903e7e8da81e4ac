package sim

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/stupside/prism/internal/capability"
)

// NavigatorInfo is a static navigator. Fields ending in Err make the matching
// accessor fail.
type NavigatorInfo struct {
	UserAgentValue string
	UserAgentErr   error
	PlatformValue  string
	LanguageValue  string
	LanguagesValue []string
	Concurrency    float64
	TouchPoints    int
	Geolocation    bool
	GamepadIDs     []string
	Properties     int
	Network        *capability.NetworkInformation
}

var _ capability.Navigator = NavigatorInfo{}

func (n NavigatorInfo) UserAgent() (string, error) {
	if n.UserAgentErr != nil {
		return "", n.UserAgentErr
	}
	return n.UserAgentValue, nil
}

func (n NavigatorInfo) Platform() (string, error)    { return n.PlatformValue, nil }
func (n NavigatorInfo) Language() (string, error)    { return n.LanguageValue, nil }
func (n NavigatorInfo) Languages() []string          { return n.LanguagesValue }
func (n NavigatorInfo) HardwareConcurrency() float64 { return n.Concurrency }
func (n NavigatorInfo) MaxTouchPoints() int          { return n.TouchPoints }
func (n NavigatorInfo) HasGeolocation() bool         { return n.Geolocation }
func (n NavigatorInfo) Gamepads() ([]string, error)  { return n.GamepadIDs, nil }
func (n NavigatorInfo) PropertyCount() int           { return n.Properties }

func (n NavigatorInfo) Connection() (capability.NetworkInformation, error) {
	if n.Network == nil {
		return capability.NetworkInformation{}, fmt.Errorf("connection: %w", capability.ErrUnsupported)
	}
	return *n.Network, nil
}

type permissionService struct{ host *Host }

func (p permissionService) Query(_ context.Context, name string) (capability.PermissionState, error) {
	p.host.mu.Lock()
	p.host.queried = append(p.host.queried, name)
	p.host.mu.Unlock()

	if p.host.FailPermissions[name] {
		return "", fmt.Errorf("permission %q: %w", name, capability.ErrUnsupported)
	}
	if s, ok := p.host.PermissionStates[name]; ok {
		return s, nil
	}
	return capability.PermissionPrompt, nil
}

type mediaDevices struct{ host *Host }

func (m mediaDevices) Enumerate(context.Context) ([]capability.DeviceKind, error) {
	return append([]capability.DeviceKind(nil), m.host.Devices...), nil
}

// FontStats counts text element activity.
type FontStats struct {
	Attaches      int
	Detaches      int
	DetachedReads int
}

// Fonts returns the text element counters.
func (h *Host) Fonts() FontStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fonts
}

var baseExtents = map[string][2]int{
	"monospace":  {562, 82},
	"sans-serif": {610, 83},
	"serif":      {580, 84},
}

// textElement measures text by font family. The first family in the list
// that is either generic or installed decides the extent.
type textElement struct {
	*released

	host     *Host
	style    map[string]string
	text     string
	attached bool
}

func (h *Host) NewTextElement(context.Context) (capability.TextElement, error) {
	if err := h.acquire(TextElement); err != nil {
		return nil, err
	}
	return &textElement{released: &released{host: h}, host: h, style: make(map[string]string)}, nil
}

func (t *textElement) SetStyle(_ context.Context, property, value string) error {
	t.style[property] = value
	return nil
}

func (t *textElement) SetText(_ context.Context, text string) error {
	t.text = text
	return nil
}

func (t *textElement) Attach(context.Context) error {
	if t.attached {
		return errors.New("element already attached")
	}
	t.attached = true
	t.host.mu.Lock()
	t.host.fonts.Attaches++
	t.host.mu.Unlock()
	return nil
}

func (t *textElement) Detach(context.Context) error {
	if !t.attached {
		return errors.New("element not attached")
	}
	t.attached = false
	t.host.mu.Lock()
	t.host.fonts.Detaches++
	t.host.mu.Unlock()
	return nil
}

func (t *textElement) OffsetSize(context.Context) (int, int, error) {
	if !t.attached {
		t.host.mu.Lock()
		t.host.fonts.DetachedReads++
		t.host.mu.Unlock()
		return 0, 0, nil
	}
	if t.text == "" {
		return 0, 0, nil
	}

	families := strings.Split(t.style["font-family"], ",")
	for _, f := range families {
		name := strings.Trim(strings.TrimSpace(f), `"'`)
		if e, ok := baseExtents[name]; ok {
			return e[0], e[1], nil
		}
		if t.host.InstalledFonts[name] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(name))
			// installed fonts land in 400..499, clear of every base width
			return 400 + int(h.Sum32()%100), 80, nil
		}
	}
	return baseExtents["serif"][0], baseExtents["serif"][1], nil
}
