package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/coffio"
	"github.com/allisson/coffio/cmd/coffioctl/commands"
)

func listFlag() cli.Flag {
	return &cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "override the configured ikm list path"}
}

func addIkmCommand() *cli.Command {
	return &cli.Command{
		Name:  "add-ikm",
		Usage: "Generate a new IKM using the default scheme and validity window",
		Flags: []cli.Flag{listFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger := loadConfigAndLogger()
			return commands.RunAddIkm(listPath(cmd, cfg), logger, os.Stdout)
		},
	}
}

func addCustomIkmCommand() *cli.Command {
	return &cli.Command{
		Name:  "add-custom-ikm",
		Usage: "Generate a new IKM with an explicit scheme and validity window",
		Flags: []cli.Flag{
			listFlag(),
			&cli.UintFlag{Name: "scheme", Value: 1, Usage: "scheme tag: 1 = XChaCha20-Poly1305/BLAKE3, 2 = AES-128-GCM/HKDF-SHA256"},
			&cli.DurationFlag{Name: "duration", Value: 315_569_252 * time.Second, Usage: "validity window starting now"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger := loadConfigAndLogger()
			return commands.RunAddCustomIkm(
				listPath(cmd, cfg),
				coffio.SchemeTag(cmd.Uint("scheme")),
				cmd.Duration("duration"),
				logger,
				os.Stdout,
			)
		},
	}
}

func revokeIkmCommand() *cli.Command {
	return &cli.Command{
		Name:  "revoke-ikm",
		Usage: "Mark an IKM as revoked",
		Flags: []cli.Flag{
			listFlag(),
			&cli.UintFlag{Name: "id", Required: true, Usage: "IKM id to revoke"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger := loadConfigAndLogger()
			return commands.RunRevokeIkm(listPath(cmd, cfg), uint32(cmd.Uint("id")), logger)
		},
	}
}

func deleteIkmCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete-ikm",
		Usage: "Permanently remove an IKM from the list",
		Flags: []cli.Flag{
			listFlag(),
			&cli.UintFlag{Name: "id", Required: true, Usage: "IKM id to delete"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger := loadConfigAndLogger()
			return commands.RunDeleteIkm(listPath(cmd, cfg), uint32(cmd.Uint("id")), logger)
		},
	}
}

func listIkmsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-ikms",
		Usage: "Print every IKM record in the list",
		Flags: []cli.Flag{listFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _ := loadConfigAndLogger()
			return commands.RunListIkms(listPath(cmd, cfg), os.Stdout)
		},
	}
}
