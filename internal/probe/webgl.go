package probe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/stupside/prism/internal/canon"
	"github.com/stupside/prism/internal/capability"
)

// WebGL is the 3D pipeline record. Each field is read independently and is
// nil when its reading failed.
type WebGL struct {
	Renderer            *string                       `json:"renderer"`
	ContextAttributes   *capability.ContextAttributes `json:"contextAttributes"`
	ShaderPrecision     *canon.Envelope               `json:"shaderPrecision"`
	SupportedExtensions []string                      `json:"supportedExtensions"`
	Parameters          *GLParameters                 `json:"parameters"`
	ImageHash           *uint64                       `json:"imageHash"`
}

// Spokes is the number of lines radiating from the centre of the image scene.
const Spokes = 137

const (
	lineVertexShader = `attribute vec2 position;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}`
	lineFragmentShader = `precision mediump float;
void main() {
    gl_FragColor = vec4(0.812, 0.195, 0.553, 0.921);
}`
)

var (
	shaderTypes    = []capability.GLenum{capability.FragmentShader, capability.VertexShader}
	precisionTypes = []capability.GLenum{
		capability.LowFloat, capability.MediumFloat, capability.HighFloat,
		capability.LowInt, capability.MediumInt, capability.HighInt,
	}
)

// ReadWebGL reads the GL pipeline. Only a failure to create the context
// yields a nil record.
func ReadWebGL(ctx context.Context, env *Env) (*WebGL, error) {
	gl, err := env.Root.NewGLContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GL context: %w", err)
	}
	defer release(ctx, "glcontext", gl)

	out := &WebGL{
		Renderer: optional(ctx, "webgl.renderer", func() (string, error) {
			return readRenderer(ctx, gl, env.UserAgent)
		}),
		ContextAttributes: optional(ctx, "webgl.attributes", func() (capability.ContextAttributes, error) {
			return gl.ContextAttributes(ctx)
		}),
		ShaderPrecision: optional(ctx, "webgl.precision", func() (canon.Envelope, error) {
			return readPrecision(ctx, gl)
		}),
		Parameters: optional(ctx, "webgl.parameters", func() (GLParameters, error) {
			return ReadParameters(ctx, gl)
		}),
		ImageHash: optional(ctx, "webgl.image", func() (uint64, error) {
			return readImageHash(ctx, env.Root)
		}),
	}
	if exts := optional(ctx, "webgl.extensions", func() ([]string, error) {
		return gl.SupportedExtensions(ctx)
	}); exts != nil {
		out.SupportedExtensions = *exts
	}

	return out, nil
}

// readRenderer prefers the unmasked renderer on WebKit-derived engines, which
// mask the standard parameter.
func readRenderer(ctx context.Context, gl capability.GLContext, userAgent string) (string, error) {
	pname := capability.Renderer
	if strings.Contains(userAgent, "applewebkit") {
		if _, err := gl.Extension(ctx, capability.DebugRendererInfo); err != nil {
			slog.DebugContext(ctx, "activating renderer extension", "error", err)
		}
		pname = capability.UnmaskedRendererWebGL
	}

	v, err := gl.Parameter(ctx, pname)
	if err != nil {
		return "", fmt.Errorf("reading 0x%04X: %w", uint32(pname), err)
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("reading 0x%04X: got %s, want string", uint32(pname), v.Kind)
	}
	return s, nil
}

func readPrecision(ctx context.Context, gl capability.GLContext) (canon.Envelope, error) {
	formats := make([]capability.PrecisionFormat, 0, len(shaderTypes)*len(precisionTypes))
	for _, shader := range shaderTypes {
		for _, precision := range precisionTypes {
			f, err := gl.ShaderPrecision(ctx, shader, precision)
			if err != nil {
				return canon.Envelope{}, fmt.Errorf("shader 0x%04X precision 0x%04X: %w", uint32(shader), uint32(precision), err)
			}
			formats = append(formats, f)
		}
	}
	env, _ := canon.Precision(formats)
	return env, nil
}

// readImageHash draws the line scene on a context of its own so the
// parameter snapshot never observes the drawing state.
func readImageHash(ctx context.Context, root capability.Root) (uint64, error) {
	gl, err := root.NewGLContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("creating image context: %w", err)
	}
	defer release(ctx, "glcontext.image", gl)

	w, h, err := gl.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading surface size: %w", err)
	}
	if err := gl.RenderLines(ctx, LineScene(w, h)); err != nil {
		return 0, fmt.Errorf("rendering lines: %w", err)
	}
	enc, err := gl.Encode(ctx)
	if err != nil {
		return 0, fmt.Errorf("encoding image: %w", err)
	}
	return canon.Hash64(enc), nil
}

// LineScene builds the spoke pattern for a width×height surface: each spoke
// runs from the origin to (cos(a)·w/2, sin(a)·h/2).
func LineScene(width, height int) capability.LineScene {
	vertices := make([]float32, 0, Spokes*4)
	step := float32(2*math.Pi) / Spokes
	hw, hh := float32(width)/2, float32(height)/2

	for i := range Spokes {
		a := float64(float32(i) * step)
		vertices = append(vertices,
			0, 0,
			float32(math.Cos(a))*hw, float32(math.Sin(a))*hh,
		)
	}

	return capability.LineScene{
		VertexShader:   lineVertexShader,
		FragmentShader: lineFragmentShader,
		Attribute:      "position",
		Vertices:       vertices,
		ClearColor:     [4]float32{0, 0, 0, 1},
	}
}
