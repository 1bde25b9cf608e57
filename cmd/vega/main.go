package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oriys/vega/internal/config"
	"github.com/oriys/vega/internal/store"
	"github.com/oriys/vega/internal/turso"
)

const version = "1.0.0"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "vega",
		Short: "Vega - Steam app and file backend over a remote libSQL database",
		Long:  "A small HTTP backend serving apps, users and per-app file downloads from a remote Turso/libSQL database",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(
		serveCmd(),
		schemaCmd(),
		usersCmd(),
		appsCmd(),
		filesCmd(),
		fetchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getStore builds the remote-database store for one-shot CLI commands.
// The caller closes the returned client.
func getStore(cfg *config.Config) (*store.Store, *turso.Client, error) {
	client, err := turso.NewClient(turso.Config{
		URL:       cfg.Turso.URL,
		AuthToken: cfg.Turso.AuthToken,
	})
	if err != nil {
		return nil, nil, err
	}
	return store.New(client), client, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vega version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vega %s\n", version)
		},
	}
}
