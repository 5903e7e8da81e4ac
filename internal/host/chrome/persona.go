package chrome

import (
	"fmt"
	"math/rand/v2"
)

// Persona is a coherent desktop identity applied to the browser before
// probing. UA, platform, locale, screen and GPU strings all describe the same
// virtual machine so the probes see a consistent host.
type Persona struct {
	UserAgent           string
	Brands              [][2]string // [brand, majorVersion]
	FullVersionList     [][2]string // [brand, fullVersion]
	Platform            string      // Client Hints platform
	PlatformVersion     string
	Architecture        string
	Bitness             string
	NavigatorPlatform   string
	AcceptLanguage      string
	Languages           []string
	HardwareConcurrency int64
	ScreenWidth         int
	ScreenHeight        int
	DeviceScaleFactor   float64
	WebGLVendor         string
	WebGLRenderer       string
	TimezoneID          string
}

type platformPreset struct {
	uaOS              string
	navigatorPlatform string
	chPlatform        string
	chPlatformVersion string
	architecture      string
	bitness           string
	scaleFactors      []float64
	gpus              []gpuPreset
}

type gpuPreset struct {
	vendor   string
	renderer string
}

var platformPresets = []platformPreset{
	{
		uaOS:              "Windows NT 10.0; Win64; x64",
		navigatorPlatform: "Win32",
		chPlatform:        "Windows",
		chPlatformVersion: "15.0.0",
		architecture:      "x86",
		bitness:           "64",
		scaleFactors:      []float64{1, 1.25, 1.5},
		gpus: []gpuPreset{
			{"Google Inc. (Intel)", "ANGLE (Intel, Intel(R) UHD Graphics 630 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
			{"Google Inc. (NVIDIA)", "ANGLE (NVIDIA, NVIDIA GeForce RTX 3060 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
			{"Google Inc. (AMD)", "ANGLE (AMD, AMD Radeon RX 6600 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
		},
	},
	{
		uaOS:              "Macintosh; Intel Mac OS X 10_15_7",
		navigatorPlatform: "MacIntel",
		chPlatform:        "macOS",
		chPlatformVersion: "14.5.0",
		architecture:      "arm",
		bitness:           "64",
		scaleFactors:      []float64{2},
		gpus: []gpuPreset{
			{"Google Inc. (Apple)", "ANGLE (Apple, ANGLE Metal Renderer: Apple M1, Unspecified Version)"},
			{"Google Inc. (Apple)", "ANGLE (Apple, ANGLE Metal Renderer: Apple M2, Unspecified Version)"},
		},
	},
	{
		uaOS:              "X11; Linux x86_64",
		navigatorPlatform: "Linux x86_64",
		chPlatform:        "Linux",
		chPlatformVersion: "6.5.0",
		architecture:      "x86",
		bitness:           "64",
		scaleFactors:      []float64{1},
		gpus: []gpuPreset{
			{"Google Inc. (Intel)", "ANGLE (Intel, Mesa Intel(R) UHD Graphics 620 (KBL GT2), OpenGL 4.6)"},
		},
	},
}

var screenPresets = [][2]int{
	{1920, 1080},
	{2560, 1440},
	{1366, 768},
	{1536, 864},
	{1680, 1050},
}

type localePreset struct {
	timezoneID     string
	acceptLanguage string
	languages      []string
}

var localePresets = []localePreset{
	{"America/New_York", "en-US,en;q=0.9", []string{"en-US", "en"}},
	{"America/Los_Angeles", "en-US,en;q=0.9", []string{"en-US", "en"}},
	{"Europe/London", "en-GB,en;q=0.9,en-US;q=0.8", []string{"en-GB", "en", "en-US"}},
	{"Europe/Paris", "fr-FR,fr;q=0.9,en;q=0.8", []string{"fr-FR", "fr", "en"}},
	{"Europe/Berlin", "de-DE,de;q=0.9,en;q=0.8", []string{"de-DE", "de", "en"}},
}

var chromeVersions = [][2]string{
	{"136", "136.0.0.0"},
	{"137", "137.0.0.0"},
	{"138", "138.0.0.0"},
}

var hardwareConcurrencies = []int64{4, 8, 12, 16}
var greaseBrands = []string{`Not A(Brand`, `Not/A)Brand`, `Not_A Brand`}

// NewPersona builds a randomized but internally consistent persona from r.
func NewPersona(r *rand.Rand) *Persona {
	pick := func(n int) int { return r.IntN(n) }

	plat := platformPresets[pick(len(platformPresets))]
	gpu := plat.gpus[pick(len(plat.gpus))]
	scr := screenPresets[pick(len(screenPresets))]
	loc := localePresets[pick(len(localePresets))]
	ver := chromeVersions[pick(len(chromeVersions))]
	grease := greaseBrands[pick(len(greaseBrands))]

	return &Persona{
		UserAgent: fmt.Sprintf(
			"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36",
			plat.uaOS, ver[1],
		),
		Brands: [][2]string{
			{grease, "8"},
			{"Chromium", ver[0]},
			{"Google Chrome", ver[0]},
		},
		FullVersionList: [][2]string{
			{grease, "8.0.0.0"},
			{"Chromium", ver[1]},
			{"Google Chrome", ver[1]},
		},
		Platform:            plat.chPlatform,
		PlatformVersion:     plat.chPlatformVersion,
		Architecture:        plat.architecture,
		Bitness:             plat.bitness,
		NavigatorPlatform:   plat.navigatorPlatform,
		AcceptLanguage:      loc.acceptLanguage,
		Languages:           loc.languages,
		HardwareConcurrency: hardwareConcurrencies[pick(len(hardwareConcurrencies))],
		ScreenWidth:         scr[0],
		ScreenHeight:        scr[1],
		DeviceScaleFactor:   plat.scaleFactors[pick(len(plat.scaleFactors))],
		WebGLVendor:         gpu.vendor,
		WebGLRenderer:       gpu.renderer,
		TimezoneID:          loc.timezoneID,
	}
}
