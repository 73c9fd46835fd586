package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [transaction-id]",
		Short: "Print the signed purchase form for a draft transaction",
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

			req, err := app.Payments.Checkout(cmd.Context(), uint(id))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(req)
		},
	}
}
