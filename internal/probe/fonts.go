package probe

import (
	"context"
	"fmt"

	"github.com/stupside/prism/internal/capability"
)

// Fonts holds one entry per (candidate, base family) pair, candidate-major,
// in FontCandidates × BaseFamilies order. An entry is true when the candidate
// changed the rendered size, meaning it is installed.
type Fonts []bool

const (
	fontProbeText = "mmmmmmmmmmlli"
	fontProbeSize = "72px"
)

// BaseFamilies are the generic families a missing font falls back to.
var BaseFamilies = []string{"monospace", "sans-serif", "serif"}

// FontCandidates is the fixed list of fonts tested for presence.
var FontCandidates = []string{
	"Arial", "Arial Black", "Arial Narrow", "Arial Rounded MT", "Arimo",
	"Archivo", "Barlow", "Bebas Neue", "Bitter", "Bookman",
	"Calibri", "Cabin", "Candara", "Century", "Century Gothic",
	"Comic Sans MS", "Constantia", "Courier", "Courier New", "Crimson Text",
	"DM Mono", "DM Sans", "DM Serif Display", "DM Serif Text", "Dosis",
	"Droid Sans", "Exo", "Fira Code", "Fira Sans", "Franklin Gothic Medium",
	"Garamond", "Geneva", "Georgia", "Gill Sans", "Helvetica",
	"Impact", "Inconsolata", "Indie Flower", "Inter", "Josefin Sans",
	"Karla", "Lato", "Lexend", "Lucida Bright", "Lucida Console",
	"Lucida Sans Unicode", "Manrope", "Merriweather", "Merriweather Sans", "Montserrat",
	"Myriad", "Noto Sans", "Nunito", "Nunito Sans", "Open Sans",
	"Optima", "Orbitron", "Oswald", "Pacifico", "Palatino",
	"Perpetua", "PT Sans", "PT Serif", "Poppins", "Prompt",
	"Public Sans", "Quicksand", "Rajdhani", "Recursive", "Roboto",
	"Roboto Condensed", "Rockwell", "Rubik", "Segoe Print", "Segoe Script",
	"Segoe UI", "Sora", "Source Sans Pro", "Space Mono", "Tahoma",
	"Taviraj", "Times", "Times New Roman", "Titillium Web", "Trebuchet MS",
	"Ubuntu", "Varela Round", "Verdana", "Work Sans",
}

// FontFamily is the font-family value used to test candidate over base.
func FontFamily(candidate, base string) string {
	return fmt.Sprintf("%q,%s", candidate, base)
}

type extent struct{ w, h int }

// ReadFonts measures the probe string under every base family, then under
// every candidate with each base as fallback.
func ReadFonts(ctx context.Context, env *Env) (*Fonts, error) {
	el, err := env.Root.NewTextElement(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating text element: %w", err)
	}
	defer release(ctx, "text element", el)

	if err := el.SetStyle(ctx, "font-size", fontProbeSize); err != nil {
		return nil, fmt.Errorf("setting font size: %w", err)
	}
	if err := el.SetText(ctx, fontProbeText); err != nil {
		return nil, fmt.Errorf("setting probe text: %w", err)
	}

	baselines := make([]extent, len(BaseFamilies))
	for i, base := range BaseFamilies {
		e, err := measure(ctx, el, base)
		if err != nil {
			return nil, fmt.Errorf("measuring %s: %w", base, err)
		}
		baselines[i] = e
	}

	out := make(Fonts, 0, len(FontCandidates)*len(BaseFamilies))
	for _, font := range FontCandidates {
		for i, base := range BaseFamilies {
			e, err := measure(ctx, el, FontFamily(font, base))
			if err != nil {
				return nil, fmt.Errorf("measuring %s over %s: %w", font, base, err)
			}
			out = append(out, e != baselines[i])
		}
	}
	return &out, nil
}

// measure attaches el, reads its size and detaches it again.
func measure(ctx context.Context, el capability.TextElement, family string) (extent, error) {
	if err := el.SetStyle(ctx, "font-family", family); err != nil {
		return extent{}, err
	}
	if err := el.Attach(ctx); err != nil {
		return extent{}, err
	}
	w, h, err := el.OffsetSize(ctx)
	if derr := el.Detach(ctx); derr != nil && err == nil {
		err = derr
	}
	return extent{w, h}, err
}
