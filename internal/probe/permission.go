package probe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stupside/prism/internal/capability"
)

// Permissions records the resolved state of each permission. A failed or
// unsupported query is recorded as unavailable, never as denied.
type Permissions struct {
	Accelerometer      capability.PermissionState `json:"accelerometer"`
	Accessibility      capability.PermissionState `json:"accessibility"`
	AmbientLightSensor capability.PermissionState `json:"ambientLightSensor"`
	Camera             capability.PermissionState `json:"camera"`
	ClipboardRead      capability.PermissionState `json:"clipboardRead"`
	ClipboardWrite     capability.PermissionState `json:"clipboardWrite"`
	Geolocation        capability.PermissionState `json:"geolocation"`
	BackgroundSync     capability.PermissionState `json:"backgroundSync"`
	Magnetometer       capability.PermissionState `json:"magnetometer"`
	Microphone         capability.PermissionState `json:"microphone"`
	MIDI               capability.PermissionState `json:"midi"`
	Notifications      capability.PermissionState `json:"notifications"`
	PaymentHandler     capability.PermissionState `json:"paymentHandler"`
	PersistentStorage  capability.PermissionState `json:"persistentStorage"`
	Push               capability.PermissionState `json:"push"`
}

type permissionField struct {
	name string
	dst  *capability.PermissionState
}

func (p *Permissions) fields() []permissionField {
	return []permissionField{
		{"accelerometer", &p.Accelerometer},
		{"accessibility", &p.Accessibility},
		{"ambient-light-sensor", &p.AmbientLightSensor},
		{"camera", &p.Camera},
		{"clipboard-read", &p.ClipboardRead},
		{"clipboard-write", &p.ClipboardWrite},
		{"geolocation", &p.Geolocation},
		{"background-sync", &p.BackgroundSync},
		{"magnetometer", &p.Magnetometer},
		{"microphone", &p.Microphone},
		{"midi", &p.MIDI},
		{"notifications", &p.Notifications},
		{"payment-handler", &p.PaymentHandler},
		{"persistent-storage", &p.PersistentStorage},
		{"push", &p.Push},
	}
}

// PermissionNames lists the queried permissions in query order.
func PermissionNames() []string {
	fields := (&Permissions{}).fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// State returns the recorded state for a permission name, or "" for a name
// outside the fixed list.
func (p *Permissions) State(name string) capability.PermissionState {
	for _, f := range p.fields() {
		if f.name == name {
			return *f.dst
		}
	}
	return ""
}

// ReadPermissions queries every permission in turn. Each query stands alone:
// its failure marks only its own name unavailable.
func ReadPermissions(ctx context.Context, env *Env) (*Permissions, error) {
	svc, err := env.Root.Permissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening permission service: %w", err)
	}

	var p Permissions
	for _, f := range p.fields() {
		*f.dst = queryPermission(ctx, svc, f.name)
	}
	return &p, nil
}

func queryPermission(ctx context.Context, svc capability.PermissionService, name string) (out capability.PermissionState) {
	defer func() {
		if r := recover(); r != nil {
			slog.DebugContext(ctx, "permission query panicked", "permission", name, "panic", r)
			out = capability.PermissionUnavailable
		}
	}()

	state, err := svc.Query(ctx, name)
	if err != nil {
		slog.DebugContext(ctx, "permission query failed", "permission", name, "error", err)
		return capability.PermissionUnavailable
	}
	switch state {
	case capability.PermissionGranted, capability.PermissionDenied, capability.PermissionPrompt:
		return state
	default:
		slog.DebugContext(ctx, "unknown permission state", "permission", name, "state", state)
		return capability.PermissionUnavailable
	}
}
