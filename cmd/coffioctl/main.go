// Package main provides coffioctl, a command-line tool for managing an
// on-disk IKM list and exercising encrypt/decrypt from the shell. The
// coffio library itself performs no I/O; coffioctl is the thin, optional
// host that reads and writes the ikml-v1 file and wires a logger into a
// cipher engine that uses the OS RNG and clock.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/coffio/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:    "coffioctl",
		Usage:   "Manage coffio IKM lists and exercise encrypt/decrypt",
		Version: "1.0.0",
		Commands: []*cli.Command{
			addIkmCommand(),
			addCustomIkmCommand(),
			revokeIkmCommand(),
			deleteIkmCommand(),
			listIkmsCommand(),
			encryptCommand(),
			decryptCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("coffioctl error", slog.Any("error", err))
		os.Exit(1)
	}
}

func loadConfigAndLogger() (*config.Config, *slog.Logger) {
	cfg := config.Load()
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger
}

func listPath(cmd *cli.Command, cfg *config.Config) string {
	if p := cmd.String("list"); p != "" {
		return p
	}
	return cfg.IkmListPath
}
