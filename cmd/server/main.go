// Package main is the entry point for the mailing list server.
//
// main only parses flags, loads configuration and builds the logger; the
// work happens in internal/server and internal/service.
//
//	mailinglist [serve]           run the HTTP server (default)
//	mailinglist emails <interest> print subscriber emails, one per line
//	mailinglist version           print the build version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/mailinglist/internal/config"
	sqliteRepo "github.com/sakif/mailinglist/internal/repository/sqlite"
	"github.com/sakif/mailinglist/internal/server"
	"github.com/sakif/mailinglist/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "mailinglist",
		Short:        "Mailing list signup service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgFile)
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cfgFile)
			},
		},
		&cobra.Command{
			Use:   "emails <interest>",
			Short: "Print the emails of subscribers with the given interest",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEmails(cmd, cfgFile, args[0])
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	root.SetOut(out)

	return root
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel) // validated by config.Load
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func runServe(cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			return err
		}
	}

	srv, err := server.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	// Start blocks until SIGINT/SIGTERM
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func runEmails(cmd *cobra.Command, cfgFile, interest string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	// keep stdout clean for piping
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	emails, err := service.NewSignupService(db, logger).EmailsByInterest(cmd.Context(), interest)
	if err != nil {
		return err
	}
	for _, email := range emails {
		fmt.Fprintln(cmd.OutOrStdout(), email)
	}
	return nil
}
