package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a document to the corpus",
	Long: `Add a document to the corpus.

The file is extracted, cleaned, chunked and embedded, then stored with its
original bytes. The document type is taken from --type or, when omitted,
from the file extension.

Examples:
  ragdesk add handbook.pdf
  ragdesk add notes --type txt --name notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var (
	addType string
	addName string
)

func init() {
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Document type (pdf, txt, md)")
	addCmd.Flags().StringVar(&addName, "name", "", "Name to store the document under (default: file name)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	name := addName
	if name == "" {
		name = filepath.Base(path)
	}

	result, err := ingestService.Ingest(cmd.Context(), driving.IngestRequest{
		Name:         name,
		DeclaredType: addType,
		Content:      content,
	})
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Added %s (id %d, %d chunks)\n", result.Document.Name, result.Document.ID, result.Chunks)
	return nil
}
