// Package sim is a scriptable, in-process host. Its renderers are
// deterministic unless told otherwise, which makes it the reference host for
// probe and orchestrator tests.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/stupside/prism/internal/capability"
)

// Capability names a host feature that can be removed from a Host.
type Capability string

const (
	Surface2D    Capability = "surface2d"
	GLContext    Capability = "glcontext"
	OfflineAudio Capability = "offlineaudio"
	MediaElement Capability = "mediaelement"
	TextElement  Capability = "textelement"
	Window       Capability = "window"
	Screen       Capability = "screen"
	Navigator    Capability = "navigator"
	Permissions  Capability = "permissions"
	MediaDevices Capability = "mediadevices"
)

// Host implements capability.Root. Configure it before the run; fields are
// read concurrently by probes and must not change during one.
type Host struct {
	// Noise perturbs every raster encoding, like anti-fingerprinting
	// extensions do.
	Noise bool
	// IgnoreWinding makes path containment treat even-odd as non-zero.
	IgnoreWinding bool

	Params      map[capability.GLenum]capability.Value
	Extensions  []string
	Precision   map[capability.GLenum]capability.PrecisionFormat
	Attributes  capability.ContextAttributes
	SurfaceSize [2]int

	// CompleteBeforeStart fires the audio completion callback before
	// StartRendering returns.
	CompleteBeforeStart bool
	// NeverComplete withholds the audio completion callback.
	NeverComplete bool
	// BrokenChannel makes the rendered buffer refuse channel reads.
	BrokenChannel bool
	CanPlay       map[string]string

	// InstalledFonts changes the measured size of text set in these fonts.
	InstalledFonts map[string]bool

	WindowInfo       capability.WindowInfo
	ScreenInfo       capability.ScreenInfo
	Nav              NavigatorInfo
	PermissionStates map[string]capability.PermissionState
	FailPermissions  map[string]bool
	Devices          []capability.DeviceKind

	missing map[Capability]bool

	live      atomic.Int64
	allocated sync.Map // Capability -> *atomic.Int64
	noise     atomic.Uint64

	mu      sync.Mutex
	queried []string
	fonts   FontStats
}

var _ capability.Root = (*Host)(nil)

// New returns a host with every capability present and plausible desktop
// Chrome readings.
func New() *Host {
	return &Host{
		Params:      DefaultParameters(),
		Extensions:  []string{"EXT_color_buffer_float", "OES_texture_float_linear", "WEBGL_debug_renderer_info", "WEBGL_lose_context"},
		Precision:   defaultPrecision(),
		Attributes:  defaultAttributes(),
		SurfaceSize: [2]int{300, 150},
		CanPlay: map[string]string{
			"audio/aac":                   "probably",
			"audio/flac":                  "probably",
			"audio/mpeg":                  "probably",
			`audio/ogg; codecs="flac"`:    "probably",
			`audio/ogg; codecs="vorbis"`:  "probably",
			`audio/ogg; codecs="opus"`:    "probably",
			`audio/wav; codecs="1"`:       "probably",
			`audio/webm; codecs="vorbis"`: "probably",
			`audio/webm; codecs="opus"`:   "probably",
			"audio/mp4":                   "maybe",
		},
		InstalledFonts: map[string]bool{"Arial": true, "Courier New": true, "Times New Roman": true},
		WindowInfo:     capability.WindowInfo{DevicePixelRatio: 1, IndexedDB: true, LocalStorage: true},
		ScreenInfo: capability.ScreenInfo{
			Height: 1080, Width: 1920, ColorDepth: 24, PixelDepth: 24, ColorGamut: "srgb",
			AvailHeight: 1040, AvailWidth: 1920,
		},
		Nav: NavigatorInfo{
			UserAgentValue: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
			PlatformValue:  "Linux x86_64",
			LanguageValue:  "en-US",
			LanguagesValue: []string{"en-US", "en"},
			Concurrency:    8,
			Geolocation:    true,
			GamepadIDs:     []string{},
			Properties:     72,
			Network:        &capability.NetworkInformation{},
		},
		Devices: []capability.DeviceKind{capability.AudioInput, capability.AudioOutput, capability.VideoInput},
	}
}

// Without removes capabilities from the host.
func (h *Host) Without(caps ...Capability) *Host {
	if h.missing == nil {
		h.missing = make(map[Capability]bool)
	}
	for _, c := range caps {
		h.missing[c] = true
	}
	return h
}

// Live is the number of allocated host objects not yet released.
func (h *Host) Live() int64 { return h.live.Load() }

// Allocated is the number of objects handed out for a factory capability.
func (h *Host) Allocated(c Capability) int64 {
	v, ok := h.allocated.Load(c)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// Queried returns the permission names queried so far, in order.
func (h *Host) Queried() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.queried...)
}

func (h *Host) check(c Capability) error {
	if h.missing[c] {
		return fmt.Errorf("%s: %w", c, capability.ErrUnsupported)
	}
	return nil
}

func (h *Host) acquire(c Capability) error {
	if err := h.check(c); err != nil {
		return err
	}
	v, _ := h.allocated.LoadOrStore(c, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
	h.live.Add(1)
	return nil
}

// released guards against double release.
type released struct {
	host *Host
	done atomic.Bool
}

func (r *released) Release(context.Context) error {
	if !r.done.CompareAndSwap(false, true) {
		return errors.New("released twice")
	}
	r.host.live.Add(-1)
	return nil
}

func (h *Host) Window(context.Context) (capability.WindowInfo, error) {
	if err := h.check(Window); err != nil {
		return capability.WindowInfo{}, err
	}
	return h.WindowInfo, nil
}

func (h *Host) Screen(context.Context) (capability.ScreenInfo, error) {
	if err := h.check(Screen); err != nil {
		return capability.ScreenInfo{}, err
	}
	return h.ScreenInfo, nil
}

func (h *Host) Navigator(context.Context) (capability.Navigator, error) {
	if err := h.check(Navigator); err != nil {
		return nil, err
	}
	return h.Nav, nil
}

func (h *Host) Permissions(context.Context) (capability.PermissionService, error) {
	if err := h.check(Permissions); err != nil {
		return nil, err
	}
	return permissionService{h}, nil
}

func (h *Host) MediaDevices(context.Context) (capability.MediaDevices, error) {
	if err := h.check(MediaDevices); err != nil {
		return nil, err
	}
	return mediaDevices{h}, nil
}
