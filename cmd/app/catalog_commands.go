package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tradejournal/cmd/app/commands"
	"github.com/allisson/tradejournal/internal/app"
	"github.com/allisson/tradejournal/internal/config"
)

func getCatalogCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "lint-catalog",
			Usage: "Validate provider operation catalogs (stored, or a file with --file)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "file",
					Usage: "Catalog file (YAML or JSON) to check instead of the database",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				filePath := cmd.String("file")
				if filePath != "" {
					return commands.RunLintCatalog(
						ctx, nil, container.Logger(), commands.DefaultIO().Writer, filePath, cmd.String("format"),
					)
				}

				providerUseCase, err := container.ProviderUseCase()
				if err != nil {
					return err
				}
				return commands.RunLintCatalog(
					ctx, providerUseCase, container.Logger(), commands.DefaultIO().Writer, "", cmd.String("format"),
				)
			},
		},
		{
			Name:  "import-catalog",
			Usage: "Create or update providers from a catalog file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Required: true,
					Usage:    "Catalog file (YAML or JSON)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				providerUseCase, err := container.ProviderUseCase()
				if err != nil {
					return err
				}
				return commands.RunImportCatalog(
					ctx,
					providerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("file"),
					cmd.String("format"),
				)
			},
		},
	}
}
