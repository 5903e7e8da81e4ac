package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/fingerprint"
	"github.com/stupside/prism/internal/host/chrome"
)

// stabilityCommand returns the "stability" CLI subcommand.
func stabilityCommand() *cli.Command {
	return &cli.Command{
		Name:  "stability",
		Usage: "Fingerprint the same browser several times and report slots that change",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "runs",
				Usage: "Number of builds to compare",
				Value: 3,
				Validator: func(n int) error {
					if n < 2 {
						return fmt.Errorf("runs must be at least 2, got %d", n)
					}
					return nil
				},
			},
		},
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

			builder := fingerprint.NewBuilder(cfg.Probes)
			runs := make([]*fingerprint.Fingerprint, 0, cmd.Int("runs"))
			for i := range cmd.Int("runs") {
				runCtx, cancel := context.WithTimeout(ctx, cfg.Browser.Timeout)
				fp := builder.Build(runCtx, host)
				cancel()

				if err := context.Cause(ctx); err != nil {
					return err
				}
				host.Snapshot(fmt.Sprintf("run%d", i+1), fp.Present())
				slog.InfoContext(ctx, "run complete", "run", i+1, "present", fp.Present())
				runs = append(runs, fp)
			}

			report, err := fingerprint.Compare(runs)
			if err != nil {
				return fmt.Errorf("comparing runs: %w", err)
			}
			if err := writeJSON(cmd.Root().Writer, report, cfg.Output.Pretty); err != nil {
				return err
			}

			if !report.Stable() {
				return fmt.Errorf("unstable slots: %v", report.Unstable)
			}
			slog.InfoContext(ctx, "fingerprint stable", "runs", report.Runs, "missing", report.Missing)
			return nil
		},
	}
}
