package chrome

import (
	"context"

	"github.com/stupside/prism/internal/capability"
)

type glContext struct {
	handle
}

func (h *Host) NewGLContext(ctx context.Context) (capability.GLContext, error) {
	var id int
	if err := h.call(ctx, &id, "gl"); err != nil {
		return nil, err
	}
	return &glContext{handle{host: h, id: id}}, nil
}

func (g *glContext) Parameter(ctx context.Context, pname capability.GLenum) (capability.Value, error) {
	var v capability.Value
	err := g.host.call(ctx, &v, "glParam", g.id, pname)
	return v, err
}

func (g *glContext) Extension(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := g.host.call(ctx, &ok, "glExt", g.id, name)
	return ok, err
}

func (g *glContext) SupportedExtensions(ctx context.Context) ([]string, error) {
	var exts []string
	if err := g.host.call(ctx, &exts, "glExts", g.id); err != nil {
		return nil, err
	}
	return exts, nil
}

func (g *glContext) ContextAttributes(ctx context.Context) (capability.ContextAttributes, error) {
	var attrs capability.ContextAttributes
	err := g.host.call(ctx, &attrs, "glAttrs", g.id)
	return attrs, err
}

func (g *glContext) ShaderPrecision(ctx context.Context, shader, precision capability.GLenum) (capability.PrecisionFormat, error) {
	var f capability.PrecisionFormat
	err := g.host.call(ctx, &f, "glPrecision", g.id, shader, precision)
	return f, err
}

func (g *glContext) Size(ctx context.Context) (int, int, error) {
	var size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	err := g.host.call(ctx, &size, "glSize", g.id)
	return size.Width, size.Height, err
}

func (g *glContext) RenderLines(ctx context.Context, scene capability.LineScene) error {
	var ok bool
	return g.host.call(ctx, &ok, "glLines", g.id, scene)
}

func (g *glContext) Encode(ctx context.Context) (string, error) {
	var url string
	err := g.host.call(ctx, &url, "glEncode", g.id)
	return url, err
}
