package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/coffio/cmd/coffioctl/commands"
)

func contextFlags() []cli.Flag {
	return []cli.Flag{
		listFlag(),
		&cli.StringFlag{Name: "key-ctx", Usage: "comma-separated key context elements"},
		&cli.StringFlag{Name: "data-ctx", Usage: "comma-separated data context elements"},
		&cli.BoolFlag{Name: "periodic", Usage: "treat the key context as periodic"},
		&cli.UintFlag{Name: "periodicity", Usage: "key context periodicity in seconds (defaults to one tropical year)"},
	}
}

func encryptCommand() *cli.Command {
	return &cli.Command{
		Name:  "encrypt",
		Usage: "Encrypt a plaintext argument into an enc-v1 token",
		Flags: append(contextFlags(), &cli.StringFlag{Name: "plaintext", Required: true}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger := loadConfigAndLogger()
			return commands.RunEncrypt(
				listPath(cmd, cfg),
				commands.SplitContext(cmd.String("key-ctx")),
				commands.SplitContext(cmd.String("data-ctx")),
				cmd.Bool("periodic"),
				cmd.Uint("periodicity"),
				cmd.String("plaintext"),
				logger,
				os.Stdout,
			)
		},
	}
}

func decryptCommand() *cli.Command {
	return &cli.Command{
		Name:  "decrypt",
		Usage: "Decrypt an enc-v1 token back into plaintext",
		Flags: append(contextFlags(), &cli.StringFlag{Name: "token", Required: true}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger := loadConfigAndLogger()
			return commands.RunDecrypt(
				listPath(cmd, cfg),
				commands.SplitContext(cmd.String("key-ctx")),
				commands.SplitContext(cmd.String("data-ctx")),
				cmd.Bool("periodic"),
				cmd.Uint("periodicity"),
				cmd.String("token"),
				logger,
				os.Stdout,
			)
		},
	}
}
