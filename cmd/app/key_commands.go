package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tradejournal/cmd/app/commands"
	"github.com/allisson/tradejournal/internal/app"
	"github.com/allisson/tradejournal/internal/config"
)

func registryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Key registry file (defaults to KEY_REGISTRY_PATH)",
		},
		&cli.StringFlag{
			Name:    "id",
			Aliases: []string{"i"},
			Value:   "",
			Usage:   "Master key ID (e.g., prod-master-key-2026)",
		},
		&cli.StringFlag{
			Name:  "kms-key-uri",
			Usage: "KMS key URI used to wrap the key (defaults to KMS_KEY_URI, empty stores the key raw)",
		},
	}
}

// registryTarget resolves flags against configuration.
func registryTarget(cmd *cli.Command, cfg *config.Config) (path, kmsKeyURI string) {
	path = cmd.String("path")
	if path == "" {
		path = cfg.KeyRegistryPath
	}
	kmsKeyURI = cmd.String("kms-key-uri")
	if kmsKeyURI == "" {
		kmsKeyURI = cfg.KMSKeyURI
	}
	return path, kmsKeyURI
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a master key and write a new key registry file",
			Flags: append(registryFlags(), &cli.BoolFlag{
				Name:  "force",
				Value: false,
				Usage: "Replace an existing registry file",
			}),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				path, kmsKeyURI := registryTarget(cmd, cfg)
				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					path,
					cmd.String("id"),
					kmsKeyURI,
					cmd.Bool("force"),
				)
			},
		},
		{
			Name:  "rotate-master-key",
			Usage: "Add a new master key to the registry and make it active",
			Flags: registryFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				path, kmsKeyURI := registryTarget(cmd, cfg)
				return commands.RunRotateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					path,
					cmd.String("id"),
					kmsKeyURI,
				)
			},
		},
		{
			Name:  "rewrap-credentials",
			Usage: "Re-encrypt stored credentials that are not under the active master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "category",
					Aliases: []string{"c"},
					Usage:   "Only rewrap one category (ai, data, news, trade)",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of credentials to process per batch",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunRewrapCredentials(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("category"),
					int(cmd.Int("batch-size")),
					cmd.String("format"),
				)
			},
		},
	}
}
