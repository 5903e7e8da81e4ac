package sim

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/stupside/prism/internal/capability"
)

// DefaultParameters are the readings of a typical desktop WebGL2 context.
func DefaultParameters() map[capability.GLenum]capability.Value {
	num := capability.NumberValue
	nums := capability.NumbersValue
	flag := capability.BoolValue
	str := capability.StringValue

	return map[capability.GLenum]capability.Value{
		capability.ActiveTexture:                   num(0x84C0),
		capability.AliasedLineWidthRange:           nums(1, 1),
		capability.AliasedPointSizeRange:           nums(1, 1024),
		capability.AlphaBits:                       num(8),
		capability.Blend:                           flag(false),
		capability.BlueBits:                        num(8),
		capability.ColorClearValue:                 nums(0, 0, 0, 0),
		capability.ColorWritemask:                  capability.BoolsValue(true, true, true, true),
		capability.CompressedTextureFormats:        nums(),
		capability.CullFace:                        flag(false),
		capability.CullFaceMode:                    num(0x0405),
		capability.DepthBits:                       num(24),
		capability.DepthClearValue:                 num(1),
		capability.DepthFunc:                       num(0x0201),
		capability.DepthRange:                      nums(0, 1),
		capability.DepthTest:                       flag(false),
		capability.DepthWritemask:                  flag(true),
		capability.Dither:                          flag(true),
		capability.FrontFace:                       num(0x0901),
		capability.GenerateMipmapHint:              num(0x1100),
		capability.GreenBits:                       num(8),
		capability.ImplementationColorReadFormat:   num(0x1908),
		capability.ImplementationColorReadType:     num(0x1401),
		capability.LineWidth:                       num(1),
		capability.MaxCombinedTextureImageUnits:    num(32),
		capability.MaxCubeMapTextureSize:           num(16384),
		capability.MaxFragmentUniformVectors:       num(1024),
		capability.MaxRenderbufferSize:             num(16384),
		capability.MaxTextureImageUnits:            num(16),
		capability.MaxTextureSize:                  num(16384),
		capability.MaxVaryingVectors:               num(30),
		capability.MaxVertexAttribs:                num(16),
		capability.MaxVertexTextureImageUnits:      num(16),
		capability.MaxVertexUniformVectors:         num(1024),
		capability.MaxViewportDims:                 nums(32767, 32767),
		capability.PackAlignment:                   num(4),
		capability.PolygonOffsetFactor:             num(0),
		capability.PolygonOffsetFill:               flag(false),
		capability.PolygonOffsetUnits:              num(0),
		capability.RedBits:                         num(8),
		capability.Renderer:                        str("WebKit WebGL"),
		capability.SampleBuffers:                   num(1),
		capability.SampleCoverageInvert:            flag(false),
		capability.SampleCoverageValue:             num(1),
		capability.Samples:                         num(4),
		capability.ScissorBox:                      nums(0, 0, 300, 150),
		capability.ScissorTest:                     flag(false),
		capability.ShadingLanguageVersion:          str("WebGL GLSL ES 3.00 (OpenGL ES GLSL ES 3.0 Chromium)"),
		capability.StencilBackFail:                 num(0x1E00),
		capability.StencilBackFunc:                 num(0x0207),
		capability.StencilBackPassDepthFail:        num(0x1E00),
		capability.StencilBackPassDepthPass:        num(0x1E00),
		capability.StencilBackRef:                  num(0),
		capability.StencilBackValueMask:            num(0x7FFFFFFF),
		capability.StencilBackWritemask:            num(0x7FFFFFFF),
		capability.StencilBits:                     num(0),
		capability.StencilClearValue:               num(0),
		capability.StencilFail:                     num(0x1E00),
		capability.StencilFunc:                     num(0x0207),
		capability.StencilPassDepthFail:            num(0x1E00),
		capability.StencilPassDepthPass:            num(0x1E00),
		capability.StencilRef:                      num(0),
		capability.StencilTest:                     flag(false),
		capability.StencilValueMask:                num(0x7FFFFFFF),
		capability.StencilWritemask:                num(0x7FFFFFFF),
		capability.SubpixelBits:                    num(4),
		capability.UnpackAlignment:                 num(4),
		capability.UnpackColorspaceConversionWebGL: num(0x9244),
		capability.UnpackFlipYWebGL:                flag(false),
		capability.UnpackPremultiplyAlphaWebGL:     flag(false),
		capability.Vendor:                          str("WebKit"),
		capability.Version:                         str("WebGL 2.0 (OpenGL ES 3.0 Chromium)"),
		capability.Viewport:                        nums(0, 0, 300, 150),
		capability.UnmaskedVendorWebGL:             str("Google Inc. (Intel)"),
		capability.UnmaskedRendererWebGL:           str("ANGLE (Intel, Mesa Intel(R) UHD Graphics 620 (KBL GT2), OpenGL 4.6)"),
	}
}

func defaultPrecision() map[capability.GLenum]capability.PrecisionFormat {
	return map[capability.GLenum]capability.PrecisionFormat{
		capability.LowFloat:    {RangeMin: 127, RangeMax: 127, Precision: 23},
		capability.MediumFloat: {RangeMin: 127, RangeMax: 127, Precision: 23},
		capability.HighFloat:   {RangeMin: 127, RangeMax: 127, Precision: 23},
		capability.LowInt:      {RangeMin: 31, RangeMax: 30, Precision: 0},
		capability.MediumInt:   {RangeMin: 31, RangeMax: 30, Precision: 0},
		capability.HighInt:     {RangeMin: 31, RangeMax: 30, Precision: 0},
	}
}

func defaultAttributes() capability.ContextAttributes {
	yes, no, pref := true, false, "default"
	return capability.ContextAttributes{
		Alpha:                        &yes,
		Depth:                        &yes,
		Stencil:                      &no,
		Antialias:                    &yes,
		FailIfMajorPerformanceCaveat: &no,
		PowerPreference:              &pref,
		PremultipliedAlpha:           &yes,
		PreserveDrawingBuffer:        &no,
	}
}

// glContext serves parameter reads from the host tables and rasterizes
// line scenes into a digest of the vertex data.
type glContext struct {
	*released

	host     *Host
	unmasked atomic.Bool
	scene    []byte
}

func (h *Host) NewGLContext(context.Context) (capability.GLContext, error) {
	if err := h.acquire(GLContext); err != nil {
		return nil, err
	}
	return &glContext{released: &released{host: h}, host: h}, nil
}

func (g *glContext) Parameter(_ context.Context, pname capability.GLenum) (capability.Value, error) {
	if (pname == capability.UnmaskedRendererWebGL || pname == capability.UnmaskedVendorWebGL) && !g.unmasked.Load() {
		return capability.Value{Kind: capability.KindNull}, nil
	}
	v, ok := g.host.Params[pname]
	if !ok {
		return capability.Value{}, fmt.Errorf("parameter 0x%04X: invalid enum", uint32(pname))
	}
	return v, nil
}

func (g *glContext) Extension(_ context.Context, name string) (bool, error) {
	if !slices.Contains(g.host.Extensions, name) {
		return false, nil
	}
	if name == capability.DebugRendererInfo {
		g.unmasked.Store(true)
	}
	return true, nil
}

func (g *glContext) SupportedExtensions(context.Context) ([]string, error) {
	return slices.Clone(g.host.Extensions), nil
}

func (g *glContext) ContextAttributes(context.Context) (capability.ContextAttributes, error) {
	return g.host.Attributes, nil
}

func (g *glContext) ShaderPrecision(_ context.Context, shader, precision capability.GLenum) (capability.PrecisionFormat, error) {
	if shader != capability.VertexShader && shader != capability.FragmentShader {
		return capability.PrecisionFormat{}, fmt.Errorf("shader type 0x%04X: invalid enum", uint32(shader))
	}
	f, ok := g.host.Precision[precision]
	if !ok {
		return capability.PrecisionFormat{}, fmt.Errorf("precision type 0x%04X: invalid enum", uint32(precision))
	}
	return f, nil
}

func (g *glContext) Size(context.Context) (int, int, error) {
	return g.host.SurfaceSize[0], g.host.SurfaceSize[1], nil
}

func (g *glContext) RenderLines(_ context.Context, scene capability.LineScene) error {
	if scene.VertexShader == "" || scene.FragmentShader == "" {
		return errors.New("program failed to link")
	}
	if len(scene.Vertices)%2 != 0 {
		return fmt.Errorf("vertex data has odd length %d", len(scene.Vertices))
	}
	buf := make([]byte, 0, 4*(len(scene.Vertices)+4))
	for _, c := range scene.ClearColor {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
	}
	for _, v := range scene.Vertices {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	g.scene = buf
	return nil
}

func (g *glContext) Encode(context.Context) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%dx%d\n", g.host.SurfaceSize[0], g.host.SurfaceSize[1])
	h.Write(g.scene)
	if g.host.Noise {
		fmt.Fprintf(h, "noise:%d", g.host.noise.Add(1))
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
