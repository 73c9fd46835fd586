package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [transaction-id]",
		Short: "Re-check a transaction against the gateway and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			app, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			tx, err := app.Payments.ReconcileTransaction(cmd.Context(), uint(id))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tx)
		},
	}
}
