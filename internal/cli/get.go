package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "get [BASE_URL|ENDPOINT] [PATH...]",
		Short: "Make a GET request to an endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, http.MethodGet, flags, args)
		},
	}

	addRequestFlags(cmd, flags, false)
	return cmd
}
