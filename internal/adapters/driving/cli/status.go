package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// namedPinger pairs an adapter health check with its display name.
type namedPinger struct {
	name string
	ping func(cmd *cobra.Command) error
}

var pingers []namedPinger

// AddPinger registers an adapter health check for the status command.
func AddPinger(name string, ping func(cmd *cobra.Command) error) {
	pingers = append(pingers, namedPinger{name: name, ping: ping})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the backing services",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if len(pingers) == 0 {
		return errors.New("no services configured")
	}

	var failed bool
	for _, p := range pingers {
		if err := p.ping(cmd); err != nil {
			cmd.Printf("  %s: FAIL (%v)\n", p.name, err)
			failed = true
			continue
		}
		cmd.Printf("  %s: ok\n", p.name)
	}

	if failed {
		return errors.New("one or more services are unreachable")
	}
	return nil
}
