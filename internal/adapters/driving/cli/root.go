// Package cli implements the ragdesk command line interface using cobra.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services used by the commands. They are nil until SetServices is called.
var (
	ingestService   driving.IngestService
	answerService   driving.AnswerService
	documentService driving.DocumentService
	settingsService driving.SettingsService
)

// verbose enables debug logging for every command.
var verbose bool

// prepareIndex loads the in-memory vector index. It runs at most once per
// process, and only for commands that search the index.
var (
	prepareIndex  func(ctx context.Context) error
	indexPrepared bool
)

var rootCmd = &cobra.Command{
	Use:   "ragdesk",
	Short: "Ask questions about your documents",
	Long: `ragdesk keeps a local corpus of uploaded documents, indexes them as
embedding vectors and answers questions using the closest passages as context.

Add documents with 'ragdesk add', then ask with 'ragdesk ask'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services groups the driving ports the commands depend on.
type Services struct {
	Ingest   driving.IngestService
	Answer   driving.AnswerService
	Document driving.DocumentService
	Settings driving.SettingsService

	// Prepare populates the vector index before the first search.
	Prepare func(ctx context.Context) error
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	answerService = s.Answer
	documentService = s.Document
	settingsService = s.Settings
	prepareIndex = s.Prepare
	indexPrepared = false

	SetTUIConfig(&TUIConfig{
		AnswerService:   s.Answer,
		DocumentService: s.Document,
		IngestService:   s.Ingest,
	})
}

// ensureIndex runs the prepare hook the first time a command needs the
// index. A failure is logged; the command still runs against whatever the
// index holds.
func ensureIndex(cmd *cobra.Command) {
	if prepareIndex == nil || indexPrepared {
		return
	}
	indexPrepared = true
	if err := prepareIndex(cmd.Context()); err != nil {
		logger.Warn("Preparing index: %v", err)
	}
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
