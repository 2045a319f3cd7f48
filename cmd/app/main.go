package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/doclink/internal"
	pkgconfig "github.com/starford/doclink/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	// A missing config file is only an error when the user pointed at one.
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithScanSettings(internal.ScanSettings{
			Fix:           cmd.Bool("fix"),
			Yes:           cmd.Bool("yes"),
			DryRun:        cmd.Bool("dry-run"),
			Strict:        cmd.Bool("strict"),
			CheckExternal: cmd.Bool("external"),
			Root:          cmd.String("root"),
		}),
	}

	err = internal.RunScan(ctx, opts...)
	switch {
	case errors.Is(err, internal.ErrBrokenLinks):
		return cli.Exit(err.Error(), 1)
	case errors.Is(err, internal.ErrStrictWarnings):
		return cli.Exit(err.Error(), 2)
	case err != nil:
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunServe(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:           "doclink",
		Usage:          "Documentation link checker: validates Markdown cross-references and anchors, and repairs broken links",
		DefaultCommand: "scan",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Usage:  "Check every link in the corpus and report (or fix) broken ones",
				Action: runScan,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "root",
						Usage: "Corpus root directory (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "fix",
						Usage: "Apply repairs interactively",
					},
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "With --fix: apply the top suggestion without prompting",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be fixed without writing files",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Fail when links could not be verified",
					},
					&cli.BoolFlag{
						Name:  "external",
						Usage: "Probe placeholder and trusted hosts too",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve scan reports over HTTP with live re-checking on file changes",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Expose link-checking tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
