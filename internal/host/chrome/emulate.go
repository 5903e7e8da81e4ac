package chrome

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/stupside/prism/internal/app"
)

//go:embed js/prism.js
var prismJS string

//go:embed js/persona.js
var personaJS string

//go:embed js/noise.js
var noiseJS string

// pageScript joins the registry and the optional overlays. Overlays run
// before the registry so it captures the patched prototypes.
func pageScript(persona *Persona, noise bool, seed uint32) string {
	var snippets []string
	if persona != nil {
		vendor, _ := json.Marshal(persona.WebGLVendor)
		renderer, _ := json.Marshal(persona.WebGLRenderer)
		snippets = append(snippets, strings.NewReplacer(
			"{{WEBGL_VENDOR}}", string(vendor),
			"{{WEBGL_RENDERER}}", string(renderer),
		).Replace(personaJS))
	}
	if noise {
		snippets = append(snippets, strings.ReplaceAll(noiseJS, "{{NOISE_SEED}}", fmt.Sprintf("%d", seed)))
	}
	snippets = append(snippets, prismJS)
	return strings.Join(snippets, "\n")
}

// allocatorOpts returns chromedp exec-allocator options for the probe browser.
// The window size and UA come from the persona when one is set.
func allocatorOpts(cfg app.BrowserConfig, persona *Persona) []chromedp.ExecAllocatorOption {
	var headlessVal string
	if cfg.Headless {
		headlessVal = "new"
	}

	width, height := cfg.WindowWidth, cfg.WindowHeight
	if persona != nil {
		width, height = persona.ScreenWidth, persona.ScreenHeight
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(cfg.ChromePath),

		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,

		chromedp.Flag("headless", headlessVal),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),

		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),

		// headless chrome falls back to SwiftShader without these
		chromedp.Flag("enable-webgl", true),
		chromedp.Flag("ignore-gpu-blocklist", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),

		chromedp.WindowSize(width, height),
	}
	if persona != nil {
		opts = append(opts, chromedp.UserAgent(persona.UserAgent))
	}
	return opts
}

// injectPage returns a chromedp action that installs the page script before
// any document loads.
func injectPage(script string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}
}

// emulatePersona returns a chromedp action applying the persona through CDP
// overrides that JS injection cannot reach.
func emulatePersona(persona *Persona) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if err := emulation.SetAutomationOverride(false).Do(ctx); err != nil {
			return err
		}

		if err := emulation.SetHardwareConcurrencyOverride(persona.HardwareConcurrency).Do(ctx); err != nil {
			return err
		}

		if err := emulation.SetTimezoneOverride(persona.TimezoneID).Do(ctx); err != nil {
			return err
		}

		if err := emulation.SetLocaleOverride().WithLocale(persona.Languages[0]).Do(ctx); err != nil {
			return err
		}

		metrics := emulation.SetDeviceMetricsOverride(int64(persona.ScreenWidth), int64(persona.ScreenHeight), persona.DeviceScaleFactor, false).
			WithScreenWidth(int64(persona.ScreenWidth)).
			WithScreenHeight(int64(persona.ScreenHeight))
		if err := metrics.Do(ctx); err != nil {
			return err
		}

		ua := emulation.SetUserAgentOverride(persona.UserAgent)
		ua.AcceptLanguage = persona.AcceptLanguage
		ua.Platform = persona.NavigatorPlatform
		ua.UserAgentMetadata = &emulation.UserAgentMetadata{
			Brands:          brandVersions(persona.Brands),
			FullVersionList: brandVersions(persona.FullVersionList),
			Platform:        persona.Platform,
			PlatformVersion: persona.PlatformVersion,
			Architecture:    persona.Architecture,
			Model:           "",
			Mobile:          false,
			Bitness:         persona.Bitness,
		}
		return ua.Do(ctx)
	}
}

func brandVersions(pairs [][2]string) []*emulation.UserAgentBrandVersion {
	out := make([]*emulation.UserAgentBrandVersion, len(pairs))
	for i, b := range pairs {
		out[i] = &emulation.UserAgentBrandVersion{Brand: b[0], Version: b[1]}
	}
	return out
}
