package capability

import (
	"context"
	"math"
)

// GLenum is a WebGL enumeration value.
type GLenum uint32

// WebGL enumerations read by the probes.
const (
	ActiveTexture                   GLenum = 0x84E0
	AliasedLineWidthRange           GLenum = 0x846E
	AliasedPointSizeRange           GLenum = 0x846D
	AlphaBits                       GLenum = 0x0D55
	Blend                           GLenum = 0x0BE2
	BlueBits                        GLenum = 0x0D54
	ColorClearValue                 GLenum = 0x0C22
	ColorWritemask                  GLenum = 0x0C23
	CompressedTextureFormats        GLenum = 0x86A3
	CullFace                        GLenum = 0x0B44
	CullFaceMode                    GLenum = 0x0B45
	DepthBits                       GLenum = 0x0D56
	DepthClearValue                 GLenum = 0x0B73
	DepthFunc                       GLenum = 0x0B74
	DepthRange                      GLenum = 0x0B70
	DepthTest                       GLenum = 0x0B71
	DepthWritemask                  GLenum = 0x0B72
	Dither                          GLenum = 0x0BD0
	FrontFace                       GLenum = 0x0B46
	GenerateMipmapHint              GLenum = 0x8192
	GreenBits                       GLenum = 0x0D53
	ImplementationColorReadFormat   GLenum = 0x8B9B
	ImplementationColorReadType     GLenum = 0x8B9A
	LineWidth                       GLenum = 0x0B21
	MaxCombinedTextureImageUnits    GLenum = 0x8B4D
	MaxCubeMapTextureSize           GLenum = 0x851C
	MaxFragmentUniformVectors       GLenum = 0x8DFD
	MaxRenderbufferSize             GLenum = 0x84E8
	MaxTextureImageUnits            GLenum = 0x8872
	MaxTextureSize                  GLenum = 0x0D33
	MaxVaryingVectors               GLenum = 0x8DFC
	MaxVertexAttribs                GLenum = 0x8869
	MaxVertexTextureImageUnits      GLenum = 0x8B4C
	MaxVertexUniformVectors         GLenum = 0x8DFB
	MaxViewportDims                 GLenum = 0x0D3A
	PackAlignment                   GLenum = 0x0D05
	PolygonOffsetFactor             GLenum = 0x8038
	PolygonOffsetFill               GLenum = 0x8037
	PolygonOffsetUnits              GLenum = 0x2A00
	RedBits                         GLenum = 0x0D52
	Renderer                        GLenum = 0x1F01
	SampleBuffers                   GLenum = 0x80A8
	SampleCoverageInvert            GLenum = 0x80AB
	SampleCoverageValue             GLenum = 0x80AA
	Samples                         GLenum = 0x80A9
	ScissorBox                      GLenum = 0x0C10
	ScissorTest                     GLenum = 0x0C11
	ShadingLanguageVersion          GLenum = 0x8B8C
	StencilBackFail                 GLenum = 0x8801
	StencilBackFunc                 GLenum = 0x8800
	StencilBackPassDepthFail        GLenum = 0x8802
	StencilBackPassDepthPass        GLenum = 0x8803
	StencilBackRef                  GLenum = 0x8CA3
	StencilBackValueMask            GLenum = 0x8CA4
	StencilBackWritemask            GLenum = 0x8CA5
	StencilBits                     GLenum = 0x0D57
	StencilClearValue               GLenum = 0x0B91
	StencilFail                     GLenum = 0x0B94
	StencilFunc                     GLenum = 0x0B92
	StencilPassDepthFail            GLenum = 0x0B95
	StencilPassDepthPass            GLenum = 0x0B96
	StencilRef                      GLenum = 0x0B97
	StencilTest                     GLenum = 0x0B90
	StencilValueMask                GLenum = 0x0B93
	StencilWritemask                GLenum = 0x0B98
	SubpixelBits                    GLenum = 0x0D50
	UnpackAlignment                 GLenum = 0x0CF5
	UnpackColorspaceConversionWebGL GLenum = 0x9243
	UnpackFlipYWebGL                GLenum = 0x9240
	UnpackPremultiplyAlphaWebGL     GLenum = 0x9241
	Vendor                          GLenum = 0x1F00
	Version                         GLenum = 0x1F02
	Viewport                        GLenum = 0x0BA2

	UnmaskedVendorWebGL   GLenum = 0x9245
	UnmaskedRendererWebGL GLenum = 0x9246

	FragmentShader GLenum = 0x8B30
	VertexShader   GLenum = 0x8B31

	LowFloat    GLenum = 0x8DF0
	MediumFloat GLenum = 0x8DF1
	HighFloat   GLenum = 0x8DF2
	LowInt      GLenum = 0x8DF3
	MediumInt   GLenum = 0x8DF4
	HighInt     GLenum = 0x8DF5
)

// DebugRendererInfo is the extension that unmasks the renderer string.
const DebugRendererInfo = "WEBGL_debug_renderer_info"

// ValueKind tags the dynamic type of a GL parameter.
type ValueKind string

const (
	KindNull    ValueKind = "null"
	KindNumber  ValueKind = "number"
	KindBool    ValueKind = "bool"
	KindString  ValueKind = "string"
	KindNumbers ValueKind = "numbers"
	KindBools   ValueKind = "bools"
)

// Value is a getParameter result. Typed arrays are flattened to Numbers.
type Value struct {
	Kind    ValueKind `json:"k"`
	Number  float64   `json:"n,omitempty"`
	Bool    bool      `json:"b,omitempty"`
	String  string    `json:"s,omitempty"`
	Numbers []float64 `json:"ns,omitempty"`
	Bools   []bool    `json:"bs,omitempty"`
}

func NumberValue(n float64) Value      { return Value{Kind: KindNumber, Number: n} }
func BoolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func StringValue(s string) Value       { return Value{Kind: KindString, String: s} }
func NumbersValue(ns ...float64) Value { return Value{Kind: KindNumbers, Numbers: ns} }
func BoolsValue(bs ...bool) Value      { return Value{Kind: KindBools, Bools: bs} }

// AsUint32 reports the value as an unsigned enum or mask.
func (v Value) AsUint32() (uint32, bool) {
	if v.Kind != KindNumber || v.Number < 0 || v.Number > math.MaxUint32 {
		return 0, false
	}
	return uint32(v.Number), true
}

func (v Value) AsInt32() (int32, bool) {
	if v.Kind != KindNumber || v.Number < math.MinInt32 || v.Number > math.MaxInt32 {
		return 0, false
	}
	return int32(v.Number), true
}

func (v Value) AsFloat32() (float32, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return float32(v.Number), true
}

func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.String, true
}

// AsFloat32s returns exactly n numbers, or all of them when n < 0.
func (v Value) AsFloat32s(n int) ([]float32, bool) {
	if v.Kind != KindNumbers || (n >= 0 && len(v.Numbers) != n) {
		return nil, false
	}
	out := make([]float32, len(v.Numbers))
	for i, x := range v.Numbers {
		out[i] = float32(x)
	}
	return out, true
}

func (v Value) AsInt32s(n int) ([]int32, bool) {
	if v.Kind != KindNumbers || (n >= 0 && len(v.Numbers) != n) {
		return nil, false
	}
	out := make([]int32, len(v.Numbers))
	for i, x := range v.Numbers {
		out[i] = int32(x)
	}
	return out, true
}

func (v Value) AsUint32s() ([]uint32, bool) {
	if v.Kind != KindNumbers {
		return nil, false
	}
	out := make([]uint32, len(v.Numbers))
	for i, x := range v.Numbers {
		out[i] = uint32(x)
	}
	return out, true
}

func (v Value) AsBools(n int) ([]bool, bool) {
	if v.Kind != KindBools || len(v.Bools) != n {
		return nil, false
	}
	return v.Bools, true
}

// ContextAttributes are the attributes a GL context was actually created with.
// Attributes the host does not report are nil.
type ContextAttributes struct {
	Alpha                        *bool   `json:"alpha"`
	Depth                        *bool   `json:"depth"`
	Stencil                      *bool   `json:"stencil"`
	Antialias                    *bool   `json:"antialias"`
	FailIfMajorPerformanceCaveat *bool   `json:"failIfMajorPerformanceCaveat"`
	PowerPreference              *string `json:"powerPreference"`
	PremultipliedAlpha           *bool   `json:"premultipliedAlpha"`
	PreserveDrawingBuffer        *bool   `json:"preserveDrawingBuffer"`
}

// PrecisionFormat is a getShaderPrecisionFormat reading.
type PrecisionFormat struct {
	RangeMin  int32 `json:"rangeMin"`
	RangeMax  int32 `json:"rangeMax"`
	Precision int32 `json:"precision"`
}

// LineScene is a fixed shader program drawing GL_LINES over a cleared buffer.
type LineScene struct {
	VertexShader   string     `json:"vertexShader"`
	FragmentShader string     `json:"fragmentShader"`
	Attribute      string     `json:"attribute"`
	Vertices       []float32  `json:"vertices"`
	ClearColor     [4]float32 `json:"clearColor"`
}

// GLContext is a WebGL2 rendering context bound to its own surface.
type GLContext interface {
	Releaser

	Parameter(ctx context.Context, pname GLenum) (Value, error)
	// Extension activates the named extension and reports whether it exists.
	Extension(ctx context.Context, name string) (bool, error)
	SupportedExtensions(ctx context.Context) ([]string, error)
	ContextAttributes(ctx context.Context) (ContextAttributes, error)
	ShaderPrecision(ctx context.Context, shader, precision GLenum) (PrecisionFormat, error)

	// Size is the drawing surface size in pixels.
	Size(ctx context.Context) (width, height int, err error)
	// RenderLines compiles and links the scene's program, sets the viewport to
	// the surface, clears it and draws the vertices as GL_LINES.
	RenderLines(ctx context.Context, scene LineScene) error
	// Encode serializes the surface to a data URL.
	Encode(ctx context.Context) (string, error)
}
