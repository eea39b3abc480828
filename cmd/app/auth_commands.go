package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tradejournal/cmd/app/commands"
	"github.com/allisson/tradejournal/internal/app"
	"github.com/allisson/tradejournal/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-token",
			Usage: "Print a signed bearer token for a user (support and testing)",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User id placed in the token subject",
				},
				&cli.DurationFlag{
					Name:  "ttl",
					Usage: "Token lifetime (defaults to AUTH_TOKEN_EXPIRATION_SECONDS)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenService, err := container.TokenService()
				if err != nil {
					return err
				}

				ttl := cmd.Duration("ttl")
				if ttl == 0 {
					ttl = cfg.AuthTokenExpiration
				}

				return commands.RunIssueToken(
					tokenService,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("user-id")),
					ttl,
					cmd.String("format"),
				)
			},
		},
	}
}
