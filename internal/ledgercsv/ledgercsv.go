// Package ledgercsv reads expense ledgers and user names from CSV.
//
// Ledger rows are
//
//	description,amount,payer,date,shares
//
// where shares is either explicit ("u1:50;u2:50") or a list of user IDs
// ("u1;u2;u3") that splits the amount equally. An optional header row whose
// first column is "description" is skipped. Names rows are
//
//	user_id,name,email
package ledgercsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/calculator"
)

const (
	ledgerColumns = 5
	namesColumns  = 3
)

// ErrEmpty is returned when a file holds no data rows.
var ErrEmpty = errors.New("CSV is empty")

// Row is one parsed ledger line.
type Row struct {
	// Line is the 1-based line number in the source file.
	Line    int
	Expense calculator.ExpenseInput
}

// ParseLedger reads every expense row from r. Rows are parsed but not
// validated; use calculator.Validate for that.
func ParseLedger(r io.Reader) ([]Row, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, record := range records {
		line := i + 1
		if i == 0 && isHeader(record, "description") {
			continue
		}
		if len(record) != ledgerColumns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, ledgerColumns, len(record))
		}

		amount, err := parseAmount(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount: %w", line, err)
		}

		participants, err := parseShares(record[4], amount)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid shares: %w", line, err)
		}

		rows = append(rows, Row{
			Line: line,
			Expense: calculator.ExpenseInput{
				Description:  strings.TrimSpace(record[0]),
				Amount:       amount,
				PayerID:      strings.TrimSpace(record[2]),
				Date:         strings.TrimSpace(record[3]),
				Participants: participants,
			},
		})
	}

	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

// ParseNames reads user display names from r.
func ParseNames(r io.Reader) (calculator.NameLookup, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}

	names := make(calculator.NameLookup, len(records))
	for i, record := range records {
		line := i + 1
		if i == 0 && isHeader(record, "user_id") {
			continue
		}
		if len(record) != namesColumns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, namesColumns, len(record))
		}
		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("line %d: user_id is required", line)
		}
		names[id] = calculator.UserInfo{
			Name:  strings.TrimSpace(record[1]),
			Email: strings.TrimSpace(record[2]),
		}
	}
	return names, nil
}

func readAll(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

func isHeader(record []string, first string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), first)
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// parseShares reads explicit "user:amount" pairs, or plain user IDs that
// split amount equally. Mixing both forms is an error.
func parseShares(s string, amount float64) ([]calculator.ExpenseParticipant, error) {
	var entries []string
	for _, entry := range strings.Split(s, ";") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	explicit := strings.Contains(entries[0], ":")
	if !explicit {
		for _, entry := range entries {
			if strings.Contains(entry, ":") {
				return nil, errors.New("cannot mix explicit and equal shares")
			}
		}
		return calculator.SplitEqually(amount, entries), nil
	}

	participants := make([]calculator.ExpenseParticipant, 0, len(entries))
	for _, entry := range entries {
		userID, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, errors.New("cannot mix explicit and equal shares")
		}
		share, err := parseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("share for %s: %w", strings.TrimSpace(userID), err)
		}
		participants = append(participants, calculator.ExpenseParticipant{
			UserID:      strings.TrimSpace(userID),
			ShareAmount: share,
		})
	}
	return participants, nil
}
