package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credentials/cmd/app/commands"
	"github.com/allisson/credentials/internal/app"
	"github.com/allisson/credentials/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-principal",
			Usage: "Create a new API principal with grants",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Principal name, recorded on audit entries",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the principal can authenticate immediately",
				},
				&cli.StringFlag{
					Name:     "grants",
					Aliases:  []string{"g"},
					Required: true,
					Usage:    "Comma-separated operations (e.g. key:create,key:rotate) or 'all'",
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

				principalUseCase, err := container.PrincipalUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreatePrincipal(
					ctx,
					principalUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.Bool("active"),
					cmd.String("grants"),
					cmd.String("format"),
				)
			},
		},
	}
}
