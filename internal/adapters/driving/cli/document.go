package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored documents",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Print the cleaned text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var downloadCmd = &cobra.Command{
	Use:   "download [doc-id]",
	Short: "Save the original uploaded file",
	Long: `Save the original uploaded file of a document.

The file is written to --output, or to the document name in the current
directory. Use --output - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and rebuild the index",
	Long: `Delete a document, its stored file and its vectors.

The vector index is rebuilt from the remaining documents afterwards. The
bootstrap document cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from stored documents",
	Args:  cobra.NoArgs,
	RunE:  runRebuild,
}

// downloadOutput is a flag for the download command.
var downloadOutput string

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Output path (default: document name)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(rebuildCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		marker := ""
		if docs[i].Protected {
			marker = " [protected]"
		}
		cmd.Printf("  %d\t%s\t%s%s\n", docs[i].ID, docs[i].FormatUploadDate(), docs[i].Name, marker)
	}
	cmd.Println()
	cmd.Printf("Total: %d documents, %d vectors\n", len(docs), documentService.IndexSize())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(doc.Content)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	name, r, err := documentService.Download(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to download document: %w", err)
	}
	defer r.Close()

	if downloadOutput == "-" {
		_, err = io.Copy(cmd.OutOrStdout(), r)
		return err
	}

	out := downloadOutput
	if out == "" {
		out = filepath.Base(name)
	}

	f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	cmd.Printf("Saved %s (%d bytes)\n", out, n)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRebuild) {
			return fmt.Errorf("document %d deleted but the index rebuild failed, run 'ragdesk rebuild': %w", id, err)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %d deleted. Index holds %d vectors.\n", id, documentService.IndexSize())
	return nil
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	cmd.Println("Rebuilding vector index...")

	stats, err := documentService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	cmd.Printf("Indexed %d vectors from %d documents in %s\n",
		stats.Vectors, stats.Documents, stats.Duration.Round(time.Millisecond))
	return nil
}

func parseDocumentID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return id, nil
}
