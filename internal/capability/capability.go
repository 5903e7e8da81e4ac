// Package capability describes the host environment as seen by the probes.
//
// A Root is borrowed for a single fingerprinting run. Factory methods hand out
// fresh, probe-private objects (drawing surfaces, GL contexts, offline audio
// graphs, DOM elements) so that no two probes ever share mutable host state.
// Accessor methods expose read-only host metadata.
//
// Every method reports a missing host API with an error wrapping
// ErrUnsupported. Probes treat any error as "no result".
package capability

import (
	"context"
	"errors"
)

// ErrUnsupported is returned when the host does not expose a capability.
var ErrUnsupported = errors.New("capability unsupported")

// Root is the host environment handle.
type Root interface {
	// NewSurface2D allocates a fresh offscreen 2D drawing surface.
	NewSurface2D(ctx context.Context) (Surface2D, error)
	// NewGLContext allocates a fresh offscreen surface with a WebGL2 context.
	NewGLContext(ctx context.Context) (GLContext, error)
	// NewOfflineAudio creates a non-realtime audio render target.
	NewOfflineAudio(ctx context.Context, opts OfflineAudioOptions) (OfflineAudio, error)
	// NewMediaElement creates a detached media element of the given tag ("audio", "video").
	NewMediaElement(ctx context.Context, tag string) (MediaElement, error)
	// NewTextElement creates a detached inline element used for text measurement.
	NewTextElement(ctx context.Context) (TextElement, error)

	Window(ctx context.Context) (WindowInfo, error)
	Screen(ctx context.Context) (ScreenInfo, error)
	Navigator(ctx context.Context) (Navigator, error)
	Permissions(ctx context.Context) (PermissionService, error)
	MediaDevices(ctx context.Context) (MediaDevices, error)
}

// Releaser is implemented by host objects that hold resources until released.
// Release is best effort.
type Releaser interface {
	Release(ctx context.Context) error
}
