package probe

import (
	"context"
	"fmt"

	"github.com/stupside/prism/internal/capability"
)

// GLParameters is a verbatim snapshot of pipeline state and limits.
type GLParameters struct {
	ActiveTexture                   uint32     `json:"activeTexture"`
	AliasedLineWidthRange           [2]float32 `json:"aliasedLineWidthRange"`
	AliasedPointSizeRange           [2]float32 `json:"aliasedPointSizeRange"`
	AlphaBits                       int32      `json:"alphaBits"`
	Blend                           bool       `json:"blend"`
	BlueBits                        int32      `json:"blueBits"`
	ColorClearValue                 [4]float32 `json:"colorClearValue"`
	ColorWritemask                  [4]bool    `json:"colorWritemask"`
	CompressedTextureFormats        []uint32   `json:"compressedTextureFormats"`
	CullFace                        bool       `json:"cullFace"`
	CullFaceMode                    uint32     `json:"cullFaceMode"`
	DepthBits                       int32      `json:"depthBits"`
	DepthClearValue                 float32    `json:"depthClearValue"`
	DepthFunc                       uint32     `json:"depthFunc"`
	DepthRange                      [2]float32 `json:"depthRange"`
	DepthTest                       bool       `json:"depthTest"`
	DepthWritemask                  bool       `json:"depthWritemask"`
	Dither                          bool       `json:"dither"`
	FrontFace                       uint32     `json:"frontFace"`
	GenerateMipmapHint              uint32     `json:"generateMipmapHint"`
	GreenBits                       int32      `json:"greenBits"`
	ImplementationColorReadFormat   uint32     `json:"implementationColorReadFormat"`
	ImplementationColorReadType     uint32     `json:"implementationColorReadType"`
	LineWidth                       float32    `json:"lineWidth"`
	MaxCombinedTextureImageUnits    int32      `json:"maxCombinedTextureImageUnits"`
	MaxCubeMapTextureSize           int32      `json:"maxCubeMapTextureSize"`
	MaxFragmentUniformVectors       int32      `json:"maxFragmentUniformVectors"`
	MaxRenderbufferSize             int32      `json:"maxRenderbufferSize"`
	MaxTextureImageUnits            int32      `json:"maxTextureImageUnits"`
	MaxTextureSize                  int32      `json:"maxTextureSize"`
	MaxVaryingVectors               int32      `json:"maxVaryingVectors"`
	MaxVertexAttribs                int32      `json:"maxVertexAttribs"`
	MaxVertexTextureImageUnits      int32      `json:"maxVertexTextureImageUnits"`
	MaxVertexUniformVectors         int32      `json:"maxVertexUniformVectors"`
	MaxViewportDims                 [2]int32   `json:"maxViewportDims"`
	PackAlignment                   int32      `json:"packAlignment"`
	PolygonOffsetFactor             float32    `json:"polygonOffsetFactor"`
	PolygonOffsetFill               bool       `json:"polygonOffsetFill"`
	PolygonOffsetUnits              float32    `json:"polygonOffsetUnits"`
	RedBits                         int32      `json:"redBits"`
	Renderer                        string     `json:"renderer"`
	SampleBuffers                   int32      `json:"sampleBuffers"`
	SampleCoverageInvert            bool       `json:"sampleCoverageInvert"`
	SampleCoverageValue             float32    `json:"sampleCoverageValue"`
	Samples                         int32      `json:"samples"`
	ScissorBox                      [4]int32   `json:"scissorBox"`
	ScissorTest                     bool       `json:"scissorTest"`
	ShadingLanguageVersion          string     `json:"shadingLanguageVersion"`
	StencilBackFail                 uint32     `json:"stencilBackFail"`
	StencilBackFunc                 uint32     `json:"stencilBackFunc"`
	StencilBackPassDepthFail        uint32     `json:"stencilBackPassDepthFail"`
	StencilBackPassDepthPass        uint32     `json:"stencilBackPassDepthPass"`
	StencilBackRef                  int32      `json:"stencilBackRef"`
	StencilBackValueMask            uint32     `json:"stencilBackValueMask"`
	StencilBackWritemask            uint32     `json:"stencilBackWritemask"`
	StencilBits                     int32      `json:"stencilBits"`
	StencilClearValue               int32      `json:"stencilClearValue"`
	StencilFail                     uint32     `json:"stencilFail"`
	StencilFunc                     uint32     `json:"stencilFunc"`
	StencilPassDepthFail            uint32     `json:"stencilPassDepthFail"`
	StencilPassDepthPass            uint32     `json:"stencilPassDepthPass"`
	StencilRef                      int32      `json:"stencilRef"`
	StencilTest                     bool       `json:"stencilTest"`
	StencilValueMask                uint32     `json:"stencilValueMask"`
	StencilWritemask                uint32     `json:"stencilWritemask"`
	SubpixelBits                    int32      `json:"subpixelBits"`
	UnpackAlignment                 int32      `json:"unpackAlignment"`
	UnpackColorspaceConversionWebGL uint32     `json:"unpackColorspaceConversionWebgl"`
	UnpackFlipYWebGL                bool       `json:"unpackFlipYWebgl"`
	UnpackPremultiplyAlphaWebGL     bool       `json:"unpackPremultiplyAlphaWebgl"`
	Vendor                          string     `json:"vendor"`
	Version                         string     `json:"version"`
	Viewport                        [4]int32   `json:"viewport"`
}

// glParam binds one parameter name to the field it fills.
type glParam struct {
	pname  capability.GLenum
	assign func(capability.Value) bool
}

func parameterTable(p *GLParameters) []glParam {
	return []glParam{
		{capability.ActiveTexture, asUint32(&p.ActiveTexture)},
		{capability.AliasedLineWidthRange, asFloat32Array(p.AliasedLineWidthRange[:])},
		{capability.AliasedPointSizeRange, asFloat32Array(p.AliasedPointSizeRange[:])},
		{capability.AlphaBits, asInt32(&p.AlphaBits)},
		{capability.Blend, asBool(&p.Blend)},
		{capability.BlueBits, asInt32(&p.BlueBits)},
		{capability.ColorClearValue, asFloat32Array(p.ColorClearValue[:])},
		{capability.ColorWritemask, asBoolArray(p.ColorWritemask[:])},
		{capability.CompressedTextureFormats, asUint32Slice(&p.CompressedTextureFormats)},
		{capability.CullFace, asBool(&p.CullFace)},
		{capability.CullFaceMode, asUint32(&p.CullFaceMode)},
		{capability.DepthBits, asInt32(&p.DepthBits)},
		{capability.DepthClearValue, asFloat32(&p.DepthClearValue)},
		{capability.DepthFunc, asUint32(&p.DepthFunc)},
		{capability.DepthRange, asFloat32Array(p.DepthRange[:])},
		{capability.DepthTest, asBool(&p.DepthTest)},
		{capability.DepthWritemask, asBool(&p.DepthWritemask)},
		{capability.Dither, asBool(&p.Dither)},
		{capability.FrontFace, asUint32(&p.FrontFace)},
		{capability.GenerateMipmapHint, asUint32(&p.GenerateMipmapHint)},
		{capability.GreenBits, asInt32(&p.GreenBits)},
		{capability.ImplementationColorReadFormat, asUint32(&p.ImplementationColorReadFormat)},
		{capability.ImplementationColorReadType, asUint32(&p.ImplementationColorReadType)},
		{capability.LineWidth, asFloat32(&p.LineWidth)},
		{capability.MaxCombinedTextureImageUnits, asInt32(&p.MaxCombinedTextureImageUnits)},
		{capability.MaxCubeMapTextureSize, asInt32(&p.MaxCubeMapTextureSize)},
		{capability.MaxFragmentUniformVectors, asInt32(&p.MaxFragmentUniformVectors)},
		{capability.MaxRenderbufferSize, asInt32(&p.MaxRenderbufferSize)},
		{capability.MaxTextureImageUnits, asInt32(&p.MaxTextureImageUnits)},
		{capability.MaxTextureSize, asInt32(&p.MaxTextureSize)},
		{capability.MaxVaryingVectors, asInt32(&p.MaxVaryingVectors)},
		{capability.MaxVertexAttribs, asInt32(&p.MaxVertexAttribs)},
		{capability.MaxVertexTextureImageUnits, asInt32(&p.MaxVertexTextureImageUnits)},
		{capability.MaxVertexUniformVectors, asInt32(&p.MaxVertexUniformVectors)},
		{capability.MaxViewportDims, asInt32Array(p.MaxViewportDims[:])},
		{capability.PackAlignment, asInt32(&p.PackAlignment)},
		{capability.PolygonOffsetFactor, asFloat32(&p.PolygonOffsetFactor)},
		{capability.PolygonOffsetFill, asBool(&p.PolygonOffsetFill)},
		{capability.PolygonOffsetUnits, asFloat32(&p.PolygonOffsetUnits)},
		{capability.RedBits, asInt32(&p.RedBits)},
		{capability.Renderer, asString(&p.Renderer)},
		{capability.SampleBuffers, asInt32(&p.SampleBuffers)},
		{capability.SampleCoverageInvert, asBool(&p.SampleCoverageInvert)},
		{capability.SampleCoverageValue, asFloat32(&p.SampleCoverageValue)},
		{capability.Samples, asInt32(&p.Samples)},
		{capability.ScissorBox, asInt32Array(p.ScissorBox[:])},
		{capability.ScissorTest, asBool(&p.ScissorTest)},
		{capability.ShadingLanguageVersion, asString(&p.ShadingLanguageVersion)},
		{capability.StencilBackFail, asUint32(&p.StencilBackFail)},
		{capability.StencilBackFunc, asUint32(&p.StencilBackFunc)},
		{capability.StencilBackPassDepthFail, asUint32(&p.StencilBackPassDepthFail)},
		{capability.StencilBackPassDepthPass, asUint32(&p.StencilBackPassDepthPass)},
		{capability.StencilBackRef, asInt32(&p.StencilBackRef)},
		{capability.StencilBackValueMask, asUint32(&p.StencilBackValueMask)},
		{capability.StencilBackWritemask, asUint32(&p.StencilBackWritemask)},
		{capability.StencilBits, asInt32(&p.StencilBits)},
		{capability.StencilClearValue, asInt32(&p.StencilClearValue)},
		{capability.StencilFail, asUint32(&p.StencilFail)},
		{capability.StencilFunc, asUint32(&p.StencilFunc)},
		{capability.StencilPassDepthFail, asUint32(&p.StencilPassDepthFail)},
		{capability.StencilPassDepthPass, asUint32(&p.StencilPassDepthPass)},
		{capability.StencilRef, asInt32(&p.StencilRef)},
		{capability.StencilTest, asBool(&p.StencilTest)},
		{capability.StencilValueMask, asUint32(&p.StencilValueMask)},
		{capability.StencilWritemask, asUint32(&p.StencilWritemask)},
		{capability.SubpixelBits, asInt32(&p.SubpixelBits)},
		{capability.UnpackAlignment, asInt32(&p.UnpackAlignment)},
		{capability.UnpackColorspaceConversionWebGL, asUint32(&p.UnpackColorspaceConversionWebGL)},
		{capability.UnpackFlipYWebGL, asBool(&p.UnpackFlipYWebGL)},
		{capability.UnpackPremultiplyAlphaWebGL, asBool(&p.UnpackPremultiplyAlphaWebGL)},
		{capability.Vendor, asString(&p.Vendor)},
		{capability.Version, asString(&p.Version)},
		{capability.Viewport, asInt32Array(p.Viewport[:])},
	}
}

// ParameterNames lists every parameter in the snapshot, in reading order.
func ParameterNames() []capability.GLenum {
	table := parameterTable(&GLParameters{})
	out := make([]capability.GLenum, len(table))
	for i, e := range table {
		out[i] = e.pname
	}
	return out
}

// ReadParameters takes the full snapshot. Any failed or mistyped reading
// discards the whole snapshot.
func ReadParameters(ctx context.Context, gl capability.GLContext) (GLParameters, error) {
	var p GLParameters
	for _, e := range parameterTable(&p) {
		v, err := gl.Parameter(ctx, e.pname)
		if err != nil {
			return GLParameters{}, fmt.Errorf("parameter 0x%04X: %w", uint32(e.pname), err)
		}
		if !e.assign(v) {
			return GLParameters{}, fmt.Errorf("parameter 0x%04X: unexpected %s value", uint32(e.pname), v.Kind)
		}
	}
	return p, nil
}

func asUint32(dst *uint32) func(capability.Value) bool {
	return func(v capability.Value) bool {
		x, ok := v.AsUint32()
		*dst = x
		return ok
	}
}

func asInt32(dst *int32) func(capability.Value) bool {
	return func(v capability.Value) bool {
		x, ok := v.AsInt32()
		*dst = x
		return ok
	}
}

func asFloat32(dst *float32) func(capability.Value) bool {
	return func(v capability.Value) bool {
		x, ok := v.AsFloat32()
		*dst = x
		return ok
	}
}

func asBool(dst *bool) func(capability.Value) bool {
	return func(v capability.Value) bool {
		x, ok := v.AsBool()
		*dst = x
		return ok
	}
}

func asString(dst *string) func(capability.Value) bool {
	return func(v capability.Value) bool {
		x, ok := v.AsString()
		*dst = x
		return ok
	}
}

func asFloat32Array(dst []float32) func(capability.Value) bool {
	return func(v capability.Value) bool {
		xs, ok := v.AsFloat32s(len(dst))
		copy(dst, xs)
		return ok
	}
}

func asInt32Array(dst []int32) func(capability.Value) bool {
	return func(v capability.Value) bool {
		xs, ok := v.AsInt32s(len(dst))
		copy(dst, xs)
		return ok
	}
}

func asBoolArray(dst []bool) func(capability.Value) bool {
	return func(v capability.Value) bool {
		xs, ok := v.AsBools(len(dst))
		copy(dst, xs)
		return ok
	}
}

func asUint32Slice(dst *[]uint32) func(capability.Value) bool {
	return func(v capability.Value) bool {
		xs, ok := v.AsUint32s()
		*dst = xs
		return ok
	}
}
