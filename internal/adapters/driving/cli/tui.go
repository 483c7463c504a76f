package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// TUIConfig holds configuration for the TUI command.
type TUIConfig struct {
	AnswerService   driving.AnswerService
	DocumentService driving.DocumentService
	IngestService   driving.IngestService
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for ragdesk.

The TUI lets you ask questions, read answers with their sources and browse
the stored documents with keyboard navigation.

Controls:
  Enter    - Ask / Select
  ↑/k, ↓/j - Navigate
  n        - New question
  s        - Show answer sources
  c        - Show chunk boundaries
  a        - Add a file
  d        - Delete selected document
  r        - Rebuild index
  Esc      - Back / Cancel
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ensureIndex(cmd)

	// Build ports from configuration
	ports := &tui.Ports{}

	if tuiConfig != nil {
		ports.Answer = tuiConfig.AnswerService
		ports.Document = tuiConfig.DocumentService
		ports.Ingest = tuiConfig.IngestService
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			ports.ChunkSize = settings.Ingest.ChunkSize
		}
	}

	// Create the TUI app
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Set up context from command
	app.WithContext(cmd.Context())

	// Create and run the bubbletea program
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
