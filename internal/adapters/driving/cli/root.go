// Package cli implements the command-line interface using cobra.
// Commands are thin adapters over the driving ports; services are injected
// by the composition root before Execute runs.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Nil until SetServices is called.
var (
	ingestService driving.IngestService
	searchService driving.SearchService
	chatService   driving.ChatService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "Chat with your documents",
	Long: `DocuChat ingests PDF, Word, Excel and plain text files, indexes them
as embedding vectors and answers questions grounded in their content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the core services into the command tree.
func SetServices(ingest driving.IngestService, search driving.SearchService, chat driving.ChatService) {
	ingestService = ingest
	searchService = search
	chatService = chat
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
