package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "state",
		Short:   "Show aggregate system counts",
		Example: `  pricedrop state`,
		RunE: func(_ *cobra.Command, _ []string) error {
			state, err := newClient().GetState(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(state)
			}
			return printState(state)
		},
	}
}
