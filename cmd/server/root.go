package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// envFile is the optional dotenv file loaded before configuration is read.
var envFile string

// NewRootCmd creates the root command. Running it without a subcommand serves HTTP.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "forum-be",
		Short:         "Forum backend with session authentication",
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			loadLocalEnv(envFile)
		},
		RunE: runServe,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func loadLocalEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no env file found; relying on existing environment", "path", path)
			return
		}
		slog.Warn("could not load env file", "path", path, "error", err)
	}
}
