package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/quillon/docuchat/internal/watch"
)

var (
	watchDir        string
	watchDepartment string
	watchTags       []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-ingest documents from a directory",
	Long: `Watches a directory and ingests every supported document dropped into
it. Files already present at startup are ingested first. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "directory to watch (defaults to ingest.watch_dir from config)")
	watchCmd.Flags().StringVarP(&watchDepartment, "department", "d", "", "department label for auto-ingested documents")
	watchCmd.Flags().StringSliceVarP(&watchTags, "tag", "t", nil, "tags for auto-ingested documents (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

// watchDefaults carries config-file fallbacks for the watch command.
var watchDefaults watch.Options

// SetWatchDefaults sets the config-file fallbacks used when flags are unset.
func SetWatchDefaults(dir string, opts watch.Options) {
	if watchDir == "" {
		watchDir = dir
	}
	watchDefaults = opts
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if watchDir == "" {
		return errors.New("no watch directory configured; pass --dir or set ingest.watch_dir")
	}

	opts := watchDefaults
	if watchDepartment != "" {
		opts.Department = watchDepartment
	}
	if len(watchTags) > 0 {
		opts.Tags = watchTags
	}

	w, err := watch.New(watchDir, ingestService, opts)
	if err != nil {
		return err
	}

	err = w.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
