package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/fingerprint"
	"github.com/stupside/prism/internal/host/chrome"
)

// probeCommand returns the "probe" CLI subcommand.
func probeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Fingerprint the browser once and print the aggregate as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			host, err := chrome.Open(ctx, cfg.Browser, cfg.Emulation)
			if err != nil {
				return fmt.Errorf("opening browser: %w", err)
			}
			defer host.Close()

			if p := host.Persona(); p != nil {
				slog.InfoContext(ctx, "persona applied", "ua", p.UserAgent, "webgl", p.WebGLRenderer)
			}

			runCtx, cancel := context.WithTimeout(ctx, cfg.Browser.Timeout)
			defer cancel()

			fp := fingerprint.NewBuilder(cfg.Probes).Build(runCtx, host)
			host.Snapshot("built", fp.Present())

			id, err := fp.ID()
			if err != nil {
				return fmt.Errorf("computing fingerprint id: %w", err)
			}
			slog.InfoContext(ctx, "fingerprint built", "id", id, "present", fp.Present())

			return writeJSON(cmd.Root().Writer, fp, cfg.Output.Pretty)
		},
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
