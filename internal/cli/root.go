package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/bonkers/internal/output"
)

var version = "0.1.0"

// NewRootCmd builds the bonkers command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "bonkers",
		Short:   "Call HTTP APIs through endpoints derived from a base URL",
		Version: version,
		Long: `Bonkers sends GET and POST requests to endpoints derived from a base API
URL. The base URL comes from --base or from a profile file (--config) that
can also name endpoints, default headers and environments.

  bonkers get --base https://api.example.com/ user/ alice
  bonkers get -c api.yaml user alice -e '$.email'
  bonkers post -c api.yaml items -H 'Content-Type: application/json' -d '{"name":"x"}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	root.AddCommand(newGetCmd())
	root.AddCommand(newPostCmd())

	return root
}

// Execute runs the root command and prints any error to stderr.
// This is called by main.main().
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		noColor := output.ColorDisabled(os.Stderr, false)
		fmt.Fprintln(root.ErrOrStderr(), output.ErrorPrefix(noColor), err)
		return err
	}
	return nil
}
