package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newPostCmd() *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "post [BASE_URL|ENDPOINT] [PATH...]",
		Short: "Make a POST request to an endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, http.MethodPost, flags, args)
		},
	}

	addRequestFlags(cmd, flags, true)
	return cmd
}
