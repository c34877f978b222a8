package main

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/zeronote/zeronote/internal/ledger"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction and let the classifier fill in the rest",
		Long: `Record a transaction from the command line. Only the amount is
required; description, merchant, and location are optional hints for
the classifier.

Examples:
  zeronote add 12.75 --description "chipotle"
  zeronote add 4.50 --merchant "Blue Bottle" --location "Ferry Building"`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().String("description", "", "what the money was spent on")
	cmd.Flags().String("merchant", "", "who was paid")
	cmd.Flags().String("location", "", "where it happened")
	cmd.Flags().String("date", "", "transaction date (RFC 3339 or YYYY-MM-DD, default now)")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	req := ledger.Request{Amount: amount}
	req.Description, _ = cmd.Flags().GetString("description")
	req.Merchant, _ = cmd.Flags().GetString("merchant")
	req.Location, _ = cmd.Flags().GetString("location")

	if rawDate, _ := cmd.Flags().GetString("date"); rawDate != "" {
		date, dateErr := parseDate(rawDate)
		if dateErr != nil {
			return fmt.Errorf("invalid date %q: %w", rawDate, dateErr)
		}
		req.TransactionDate = date
	}

	logger := slog.Default()
	service, store, err := buildService(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txn, err := service.Create(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s  %s / %s\n", txn.Amount.StringFixed(2), txn.Type, txn.Category)
	fmt.Printf("  merchant:    %s\n", txn.Merchant)
	fmt.Printf("  description: %s\n", txn.Description)
	fmt.Printf("  analysis:    %s\n", txn.AIAnalysis)
	fmt.Printf("  id:          %s\n", txn.ID)

	return nil
}
