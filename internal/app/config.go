package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Config holds all application configuration.
type Config struct {
	Browser   BrowserConfig   `koanf:"browser" validate:"required"`
	Probes    ProbesConfig    `koanf:"probes" validate:"required"`
	Emulation EmulationConfig `koanf:"emulation" validate:"required"`
	Output    OutputConfig    `koanf:"output"`
}

// BrowserConfig holds settings for the headless browser host.
type BrowserConfig struct {
	Timeout      time.Duration `koanf:"timeout" validate:"required"`
	Headless     bool          `koanf:"headless"`
	NoSandbox    bool          `koanf:"no_sandbox"`
	ChromePath   string        `koanf:"chrome_path" validate:"required"`
	WindowWidth  int           `koanf:"window_width" validate:"required,min=320"`
	WindowHeight int           `koanf:"window_height" validate:"required,min=240"`
}

// ProbesConfig selects the probes to run and how many run at once.
type ProbesConfig struct {
	Concurrency int  `koanf:"concurrency" validate:"required,min=1,max=5"`
	Canvas      bool `koanf:"canvas"`
	WebGL       bool `koanf:"webgl"`
	Audio       bool `koanf:"audio"`
	Fonts       bool `koanf:"fonts"`
	Window      bool `koanf:"window"`
}

// Persona selects how the browser presents itself.
type Persona string

const (
	// PersonaNone leaves the browser's own identity untouched.
	PersonaNone Persona = "none"
	// PersonaRandom applies a randomly generated desktop persona.
	PersonaRandom Persona = "random"
)

// EmulationConfig holds identity overrides applied before probing.
type EmulationConfig struct {
	Persona Persona `koanf:"persona" validate:"required,oneof=none random"`
	// Noise perturbs canvas encodings the way anti-fingerprinting
	// extensions do.
	Noise bool `koanf:"noise"`
}

// OutputConfig holds result formatting settings.
type OutputConfig struct {
	Pretty bool `koanf:"pretty"`
}

// AllProbes enables every probe with the given concurrency limit.
func AllProbes(concurrency int) ProbesConfig {
	return ProbesConfig{
		Concurrency: concurrency,
		Canvas:      true,
		WebGL:       true,
		Audio:       true,
		Fonts:       true,
		Window:      true,
	}
}

// Load reads and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// ConfigFrom extracts the Config from the CLI command metadata.
func ConfigFrom(cmd *cli.Command) (*Config, error) {
	v, ok := cmd.Root().Metadata["config"]
	if !ok {
		return nil, fmt.Errorf("config not found in command metadata")
	}
	cfg, ok := v.(*Config)
	if !ok {
		return nil, fmt.Errorf("config has unexpected type %T", v)
	}
	return cfg, nil
}
