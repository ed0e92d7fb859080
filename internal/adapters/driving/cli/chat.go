package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quillon/docuchat/internal/adapters/driving/tui"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

var (
	chatModel     string
	chatMaxTokens int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with your documents",
	Long: `Launch the interactive chat interface. Answers are grounded in the
chunks retrieved from the index for each question.

Controls:
  Enter - Send message
  Esc   - Cancel in-flight answer
  Ctrl+C - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "chat model override")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 0, "maximum completion tokens")
	rootCmd.AddCommand(chatCmd)
}

// chatDefaults carries config-file fallbacks applied when flags are unset.
var chatDefaults driven.ChatOptions

// SetChatDefaults sets the config-file fallbacks for the chat command.
func SetChatDefaults(opts driven.ChatOptions) {
	chatDefaults = opts
}

// chatOptions resolves the per-turn chat options from flags, falling back
// to the config-file defaults.
func chatOptions(cmd *cobra.Command) driven.ChatOptions {
	opts := chatDefaults
	if chatModel != "" {
		opts.Model = chatModel
	}
	if cmd.Flags().Changed("max-tokens") {
		opts.MaxTokens = chatMaxTokens
	}
	return opts
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	// Panic recovery to get stack traces out of the alt screen
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Chat:   chatService,
		Ingest: ingestService,
	}

	app, err := tui.NewApp(ports, chatOptions(cmd))
	if err != nil {
		return fmt.Errorf("failed to create chat interface: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface error: %w", err)
	}

	return nil
}
