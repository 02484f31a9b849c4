// Command ledger settles and validates expense ledgers stored as CSV.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/FilipPawlowski3TP/MoneySplit/pkg/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ledger",
		Short:        "settle group expenses offline",
		Long:         `ledger reads an expense CSV, computes each user's balance and prints the transfers that settle the group.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newSettleCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

func main() {
	logging.Setup()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
