package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillon/docuchat/internal/core/domain"
)

var (
	searchTopK      int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the most similar chunks from the index,
ordered by cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchDefaults carries config-file fallbacks applied when flags are unset.
var searchDefaults domain.SearchOptions

// SetSearchDefaults sets the config-file fallbacks for the search command.
func SetSearchDefaults(opts domain.SearchOptions) {
	searchDefaults = opts
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := searchDefaults
	if cmd.Flags().Changed("top-k") {
		opts.TopK = searchTopK
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = searchThreshold
	}

	hits, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}

	return outputSearchTable(cmd, hits)
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.SearchHit) error {
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, hit.Title, hit.Score)
		if hit.Department != "" {
			cmd.Printf("      Department: %s\n", hit.Department)
		}
		if hit.ContentPreview != "" {
			cmd.Printf("      %s\n", hit.ContentPreview)
		}
		cmd.Println()
	}

	return nil
}
