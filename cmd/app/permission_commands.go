package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/actiongate/actiongate/cmd/app/commands"
	"github.com/actiongate/actiongate/internal/app"
	"github.com/actiongate/actiongate/internal/config"
)

func getPermissionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "set-override",
			Usage: "Create or replace the permission override for an action",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "action-type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Action type the override applies to (e.g. users.create)",
				},
				&cli.StringFlag{
					Name:    "capabilities",
					Aliases: []string{"c"},
					Usage:   "Comma-separated capabilities (empty opens the action to any authenticated caller)",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the override is enforced immediately",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Why the override exists",
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

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetOverride(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("action-type"),
					cmd.String("capabilities"),
					cmd.Bool("active"),
					cmd.String("description"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "get-override",
			Usage: "Show the permission override for an action",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "action-type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Action type whose override should be shown",
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

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunGetOverride(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("action-type"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "delete-override",
			Usage: "Delete the permission override for an action",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "action-type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Action type whose override should be removed",
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

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunDeleteOverride(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("action-type"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-overrides",
			Usage: "List permission overrides with pagination",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "page",
					Aliases: []string{"p"},
					Value:   1,
					Usage:   "Page number",
				},
				&cli.IntFlag{
					Name:    "per-page",
					Aliases: []string{"s"},
					Value:   50,
					Usage:   "Items per page",
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

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunListOverrides(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("page")),
					int(cmd.Int("per-page")),
					cmd.String("format"),
				)
			},
		},
	}
}
