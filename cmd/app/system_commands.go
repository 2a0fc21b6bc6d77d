package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credentials/cmd/app/commands"
	"github.com/allisson/credentials/internal/app"
	"github.com/allisson/credentials/internal/config"
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
			Name:  "verify-audit-log",
			Usage: "Verify the integrity of the audit log hash chain",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "start-date",
					Aliases: []string{"s"},
					Usage:   "Start date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format (omit for open bound)",
				},
				&cli.StringFlag{
					Name:    "end-date",
					Aliases: []string{"e"},
					Usage:   "End date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format (omit for open bound)",
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

				auditLogUseCase, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditLog(
					ctx,
					auditLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("start-date"),
					cmd.String("end-date"),
					cmd.String("format"),
				)
			},
		},
	}
}
