package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credentials/cmd/app/commands"
	"github.com/allisson/credentials/internal/app"
	"github.com/allisson/credentials/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key",
			Usage: "Register a new credential in the registry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable credential name",
				},
				&cli.StringFlag{
					Name:     "system-name",
					Required: true,
					Usage:    "Owning system name (e.g. billing-api)",
				},
				&cli.StringFlag{
					Name:     "system-type",
					Required: true,
					Usage:    "Kind of system (e.g. service, database)",
				},
				&cli.StringFlag{
					Name:     "environment",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Deployment environment (e.g. production)",
				},
				&cli.StringFlag{
					Name:     "key-ref",
					Required: true,
					Usage:    "Opaque reference into the external secret store",
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

				keyRegistryUseCase, err := container.KeyRegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateKey(
					ctx,
					keyRegistryUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("system-name"),
					cmd.String("system-type"),
					cmd.String("environment"),
					cmd.String("key-ref"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Rotate a credential to its next version",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Credential ID (UUID)",
				},
				&cli.IntFlag{
					Name:    "grace-period-seconds",
					Aliases: []string{"g"},
					Value:   0,
					Usage:   "Grace period in seconds (0 uses the configured default)",
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

				rotationSchedulerUseCase, err := container.RotationSchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateKey(
					ctx,
					rotationSchedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					time.Duration(cmd.Int("grace-period-seconds"))*time.Second,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "expire-grace",
			Usage: "Close the grace window of a single credential",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Credential ID (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				rotationSchedulerUseCase, err := container.RotationSchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunExpireGrace(
					ctx,
					rotationSchedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
				)
			},
		},
		{
			Name:  "sweep-expired",
			Usage: "Run a single grace-expiry sweep pass",
			Flags: []cli.Flag{
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

				rotationSchedulerUseCase, err := container.RotationSchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunSweepExpired(
					ctx,
					rotationSchedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
