// Package main is the entry point for the charforge server and CLI
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/cmd/server/client"
	"github.com/KirkDiggler/rpg-charforge/internal/config"
)

var (
	configFile string
	envFile    string

	// cfg is loaded before any command runs
	cfg *config.Config
)

// flagBindings maps config keys to the flags that override them. Only flags
// defined on the running command are bound.
var flagBindings = map[string]string{
	"log.level":         "log-level",
	"log.format":        "log-format",
	"server.port":       "port",
	"server.addr":       "server",
	"store.backend":     "store",
	"redis.addr":        "redis-addr",
	"sqlite.path":       "sqlite-path",
	"catalog.path":      "catalog",
	"portrait.endpoint": "portrait-endpoint",
	"srd.base_url":      "srd-url",
	"otel.endpoint":     "otel-endpoint",
}

var rootCmd = &cobra.Command{
	Use:   "charforge",
	Short: "D&D 5e character forge",
	Long: `charforge serves a gRPC gallery of D&D 5e characters and drives the
character creation wizard from the command line.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file, skipped when missing")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(client.ClientCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	v := config.New()
	if err := config.BindFlags(v, cmd, boundFlags(cmd)); err != nil {
		return err
	}

	loaded, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	slog.SetDefault(newLogger(cfg.Log, os.Stderr))
	client.UseConfig(cfg)
	return nil
}

func boundFlags(cmd *cobra.Command) map[string]string {
	out := make(map[string]string, len(flagBindings))
	for key, name := range flagBindings {
		if cmd.Flags().Lookup(name) != nil {
			out[key] = name
		}
	}
	return out
}
