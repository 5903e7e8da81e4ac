// Package probe measures the host environment through capability interfaces.
//
// Each probe reads one category of signal and returns a pointer to its record.
// A nil record means the probe produced nothing usable; probes never return a
// zero value in place of a missing reading.
package probe

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/stupside/prism/internal/capability"
)

// ErrNonDeterministic is returned when repeated sampling of the same
// operation yields different output.
var ErrNonDeterministic = errors.New("host output is not deterministic")

// Env is the per-run context shared read-only by every probe.
type Env struct {
	Root capability.Root
	// UserAgent is the lower-cased user agent, read once per run.
	UserAgent string
}

// NewEnv reads the run-wide values from root. It never fails: a missing
// navigator leaves UserAgent empty.
func NewEnv(ctx context.Context, root capability.Root) *Env {
	env := &Env{Root: root}

	nav, err := root.Navigator(ctx)
	if err != nil {
		slog.DebugContext(ctx, "navigator unavailable for user agent", "error", err)
		return env
	}
	ua, err := nav.UserAgent()
	if err != nil {
		slog.DebugContext(ctx, "user agent unavailable", "error", err)
		return env
	}
	env.UserAgent = strings.ToLower(ua)
	return env
}

// Func is the signature shared by every probe.
type Func[T any] func(ctx context.Context, env *Env) (*T, error)

// Collect runs fn and converts any error or panic into a nil record.
func Collect[T any](ctx context.Context, name string, env *Env, fn Func[T]) (out *T) {
	defer func() {
		if r := recover(); r != nil {
			slog.DebugContext(ctx, "probe panicked", "probe", name, "panic", r)
			out = nil
		}
	}()

	res, err := fn(ctx, env)
	if err != nil {
		slog.DebugContext(ctx, "probe yielded no result", "probe", name, "error", err)
		return nil
	}
	return res
}

// optional runs a sub-probe and drops its error or panic after logging.
func optional[T any](ctx context.Context, name string, fn func() (T, error)) (out *T) {
	defer func() {
		if r := recover(); r != nil {
			slog.DebugContext(ctx, "sub-probe panicked", "probe", name, "panic", r)
			out = nil
		}
	}()

	v, err := fn()
	if err != nil {
		slog.DebugContext(ctx, "sub-probe yielded no result", "probe", name, "error", err)
		return nil
	}
	return &v
}

// release frees a host object even when the run's context is already done.
func release(ctx context.Context, name string, r capability.Releaser) {
	if err := r.Release(context.WithoutCancel(ctx)); err != nil {
		slog.DebugContext(ctx, "releasing host object", "object", name, "error", err)
	}
}
