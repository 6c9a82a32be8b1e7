package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/actiongate/actiongate/cmd/app/commands"
	"github.com/actiongate/actiongate/internal/app"
	"github.com/actiongate/actiongate/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "export-docs",
			Usage: "Export the OpenAPI description of the action catalog",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "json",
					Usage:   "Output format: 'json' or 'yaml'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunExportDocs(
					container.Logger(),
					commands.DefaultIO().Writer,
					version,
					cfg.ActionsDisabled,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "validate-docs",
			Usage: "Check the action catalog for missing documentation",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "action-type",
					Aliases: []string{"t"},
					Usage:   "Check a single action instead of the whole catalog",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunValidateDocs(
					container.Logger(),
					commands.DefaultIO().Writer,
					version,
					cfg.ActionsDisabled,
					cmd.String("action-type"),
					cmd.String("format"),
				)
			},
		},
	}
}
