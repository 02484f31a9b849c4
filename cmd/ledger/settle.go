package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/calculator"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/ledgercsv"
)

var errInvalidLedger = errors.New("ledger is invalid")

func newSettleCmd() *cobra.Command {
	var inputPath, namesPath string

	cmd := &cobra.Command{
		Use:     "settle",
		Short:   "print balances and settlement transfers",
		Example: `ledger settle --input ledger.csv --names names.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readLedger(inputPath)
			if err != nil {
				return err
			}

			var names calculator.NameLookup
			if namesPath != "" {
				if names, err = readNames(namesPath); err != nil {
					return err
				}
			}

			var expenses []calculator.Expense
			for _, row := range rows {
				result := calculator.AddExpense(expenses, row.Expense, names)
				if !result.IsValid {
					for _, msg := range result.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %s\n", row.Line, msg)
					}
					return errInvalidLedger
				}
				expenses = result.UpdatedExpenses
			}

			result := calculator.CalculateExpenseResult(expenses, names)
			slog.Debug("Ledger settled",
				"expenses", len(expenses),
				"users", len(result.Balances),
				"transfers", len(result.SimplifiedDebts),
			)
			if residual, ok := calculator.CheckBalanced(result.Balances); !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: balances do not net to zero (residual %.2f)\n", residual)
			}
			return printSettlement(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "ledger CSV file path (required)")
	cmd.Flags().StringVarP(&namesPath, "names", "n", "", "user names CSV file path")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func printSettlement(w io.Writer, result calculator.ExpenseCalculationResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "USER\tPAID\tOWED\tNET\t")
	for _, b := range result.Balances {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t\n", label(b.UserID, b.UserName), b.TotalPaid, b.TotalOwed, b.NetBalance)
	}
	fmt.Fprintf(tw, "TOTAL\t%.2f\t\t\t\n", result.TotalExpenses)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(result.SimplifiedDebts) == 0 {
		fmt.Fprintln(w, "All settled.")
		return nil
	}
	for _, d := range result.SimplifiedDebts {
		fmt.Fprintf(w, "%s pays %s %.2f\n", label(d.From, d.FromName), label(d.To, d.ToName), d.Amount)
	}

	summary := calculator.SummarizeDebts(result.Balances)
	fmt.Fprintf(w, "\n%d transfers settle %.2f across %d debtors and %d creditors\n",
		len(result.SimplifiedDebts), summary.TotalDebt, summary.DebtorCount, summary.CreditorCount)
	return nil
}

func label(id, name string) string {
	if name == "" {
		return id
	}
	return name
}

func readLedger(path string) ([]ledgercsv.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ledgercsv.ParseLedger(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

func readNames(path string) (calculator.NameLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := ledgercsv.ParseNames(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return names, nil
}
