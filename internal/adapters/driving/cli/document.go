package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List or delete documents from the index.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [file-name]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := ingestService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	cmd.Println("Documents:")
	for _, doc := range docs {
		line := fmt.Sprintf("  %s (%s)", doc.FileName, doc.FileType)
		if doc.Department != "" {
			line += "  department=" + doc.Department
		}
		if len(doc.Tags) > 0 {
			line += "  tags=" + strings.Join(doc.Tags, ",")
		}
		if !doc.UploadedAt.IsZero() {
			line += "  uploaded=" + doc.UploadedAt.Format("2006-01-02 15:04")
		}
		cmd.Println(line)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	removed, err := ingestService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	cmd.Printf("Removed %s (%d chunks)\n", args[0], removed)
	return nil
}
