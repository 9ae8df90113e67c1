package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/jobcrypt/cmd/app/commands"
	"github.com/allisson/jobcrypt/internal/app"
	"github.com/allisson/jobcrypt/internal/config"
	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getHeaderCommands()...)
	return cmds
}

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP API and metrics servers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "job-worker",
			Usage: "Run a dedicated job engine process",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunJobWorker(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				logger := container.Logger()
				return commands.RunMigrations(logger, cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key and encrypt it with the configured KMS",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Aliases: []string{"i"}, Usage: "Master key ID (e.g., prod-master-key-2025)"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				logger := container.Logger()
				defer closeContainer(container, logger)
				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					logger,
					os.Stdout,
					cmd.String("id"),
					cfg.KMSProvider,
					cfg.KMSKeyURI,
				)
			},
		},
		{
			Name:  "rotate-master-key",
			Usage: "Generate a new master key to add to the chain, keeping existing keys readable",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Aliases: []string{"i"}, Usage: "New master key ID"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				logger := container.Logger()
				defer closeContainer(container, logger)
				return commands.RunRotateMasterKey(
					ctx,
					container.KMSService(),
					logger,
					os.Stdout,
					cmd.String("id"),
					cfg.KMSProvider,
					cfg.KMSKeyURI,
					os.Getenv("MASTER_KEYS"),
					os.Getenv("ACTIVE_MASTER_KEY_ID"),
				)
			},
		},
	}
}

func getHeaderCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-header",
			Usage: "Create a new encrypted file header protected by a password",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "path", Required: true, Usage: "Path to write the header file"},
				&cli.StringFlag{
					Name:  "algorithm",
					Value: "xchacha20-poly1305",
					Usage: "Encryption algorithm (xchacha20-poly1305 or aes-256-gcm)",
				},
				&cli.StringFlag{Name: "password", Required: true, Usage: "Password protecting the header's master key"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := app.NewContainer(cfg).Logger()
				return commands.RunCreateHeader(
					ctx,
					headerHashingParams(cfg),
					logger,
					cmd.String("path"),
					cmd.String("algorithm"),
					[]byte(cmd.String("password")),
				)
			},
		},
		{
			Name:  "add-keyslot",
			Usage: "Add a new password keyslot to an existing header",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "path", Required: true, Usage: "Path to the header file"},
				&cli.StringFlag{Name: "password", Required: true, Usage: "An existing password that unlocks the header"},
				&cli.StringFlag{Name: "new-password", Required: true, Usage: "The new password to protect the master key with"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := app.NewContainer(cfg).Logger()
				return commands.RunAddKeyslot(
					ctx,
					headerHashingParams(cfg),
					logger,
					cmd.String("path"),
					[]byte(cmd.String("password")),
					[]byte(cmd.String("new-password")),
				)
			},
		},
		{
			Name:  "unlock-header",
			Usage: "Verify that a password unlocks an existing header",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "path", Required: true, Usage: "Path to the header file"},
				&cli.StringFlag{Name: "password", Required: true, Usage: "Password to try against the header"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := app.NewContainer(cfg).Logger()
				return commands.RunUnlockHeader(
					ctx,
					headerHashingParams(cfg),
					logger,
					cmd.String("path"),
					[]byte(cmd.String("password")),
				)
			},
		},
	}
}

func headerHashingParams(cfg *config.Config) cryptoDomain.Argon2idParams {
	return cryptoDomain.Argon2idParams{
		Time:      cfg.HeaderHashingIterations,
		MemoryKiB: cfg.HeaderHashingMemoryKiB,
		Threads:   cfg.HeaderHashingParallelism,
	}
}
