package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/calculator"
)

func newValidateCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "check every expense in a ledger",
		Example: `ledger validate --input ledger.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readLedger(inputPath)
			if err != nil {
				return err
			}

			invalid := 0
			for _, row := range rows {
				result := calculator.Validate(row.Expense)
				if result.IsValid {
					continue
				}
				invalid++
				for _, msg := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "line %d: %s\n", row.Line, msg)
				}
			}

			if invalid > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d expenses invalid\n", invalid, len(rows))
				return errInvalidLedger
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d expenses valid\n", len(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "ledger CSV file path (required)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
