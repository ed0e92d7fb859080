package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/logger"
)

var (
	ingestDepartment string
	ingestTags       []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents into the index",
	Long: `Extracts text from the given files, splits it into chunks, embeds the
chunks and stores them in the vector index. Supported formats: pdf, docx,
xlsx, xls, txt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDepartment, "department", "d", "", "owning department label")
	ingestCmd.Flags().StringSliceVarP(&ingestTags, "tag", "t", nil, "tags to attach (repeatable)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	var failed int

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}

		fileName := filepath.Base(path)
		logger.Debug("ingesting %s (%d bytes)", fileName, len(content))

		stored, err := ingestService.Ingest(ctx, driving.IngestRequest{
			FileName:   fileName,
			Content:    content,
			Department: ingestDepartment,
			Tags:       ingestTags,
		})
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", fileName, err)
			failed++
			continue
		}

		cmd.Printf("  %s: %d chunks indexed\n", fileName, stored)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
