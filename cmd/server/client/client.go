// Package client provides CLI commands that drive the creation wizard and
// talk to the charforge gRPC service
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	"github.com/KirkDiggler/rpg-charforge/internal/config"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/abilities"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
	"github.com/KirkDiggler/rpg-charforge/internal/platform/telemetry"
)

var (
	timeout time.Duration

	// settings is handed over by the root command once config is loaded
	settings = &config.Config{}
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for the charforge service",
	Long: `Client commands create characters through the wizard, manage the gallery
on a running server, render sheets and check the catalog against the SRD.`,
}

func init() {
	ClientCmd.PersistentFlags().String("server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	ClientCmd.PersistentFlags().String("catalog", "", "Catalog YAML file, the embedded catalog when empty")

	// Gallery commands
	ClientCmd.AddCommand(listCmd)
	ClientCmd.AddCommand(getCmd)
	ClientCmd.AddCommand(deleteCmd)

	// Wizard commands
	ClientCmd.AddCommand(createCmd)
	ClientCmd.AddCommand(editCmd)

	ClientCmd.AddCommand(portraitCmd)
	ClientCmd.AddCommand(sheetCmd)
	ClientCmd.AddCommand(srdCheckCmd)
}

// UseConfig sets the loaded configuration for every client command
func UseConfig(cfg *config.Config) {
	if cfg != nil {
		settings = cfg
	}
}

// createConnection creates a gRPC connection to the server
func createConnection() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(settings.Server.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		telemetry.DialOption(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return conn, nil
}

// createCharacterClient creates a character service client
func createCharacterClient() (v1alpha1.CharacterServiceClient, func(), error) {
	conn, err := createConnection()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return v1alpha1.NewCharacterServiceClient(conn), cleanup, nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func loadCatalog() (*catalog.Catalog, error) {
	if settings.Catalog.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(settings.Catalog.Path)
}

// newRoller uses the toolkit's crypto dice
func newRoller() *abilities.Roller {
	return abilities.NewRoller(nil)
}
