package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/annotator/internal"
	pkgconfig "github.com/starford/annotator/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
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
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func runSuggest(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if s := cmd.String("trigger"); s != "" {
		cfg.Completion.TriggerPhrase = s
	}
	if cmd.IsSet("separator") {
		cfg.Completion.Separator = cmd.String("separator")
	}
	return internal.Suggest(ctx, cmd.String("file"), cmd.String("query"), internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:   "annotator",
		Usage:  "Inline annotation suggestions for Markdown documents with YAML headers",
		Action: run,
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
				Name:   "mcp",
				Usage:  "Serve annotation tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:   "suggest",
				Usage:  "Print suggestions for a query against a document header",
				Action: runSuggest,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Markdown document declaring annotations",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Text typed after the trigger phrase",
					},
					&cli.StringFlag{
						Name:  "trigger",
						Usage: "Override the trigger phrase",
					},
					&cli.StringFlag{
						Name:  "separator",
						Usage: "Override the key/value separator",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
