// Command reconcile runs one reconciliation over two CSV files and prints the
// result, without needing a database or a running server.
//
// Usage:
//
//	reconcile -ledger ledger.csv -bank statement.csv [-config config.yaml] [-json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ledgerlens/backend/internal/domain/recon"
	"github.com/ledgerlens/backend/internal/infrastructure/config"
	"github.com/ledgerlens/backend/internal/infrastructure/logging"
	"github.com/ledgerlens/backend/internal/infrastructure/semantic"
	"github.com/ledgerlens/backend/internal/ingest"
)

func main() {
	ledgerPath := flag.String("ledger", "", "ledger CSV file (required)")
	bankPath := flag.String("bank", "", "bank statement CSV file (required)")
	configPath := flag.String("config", "", "optional config file")
	jsonOut := flag.Bool("json", false, "print the full result as JSON")
	flag.Parse()

	if *ledgerPath == "" || *bankPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadFromEnv()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logger := logging.NewScopedLogger(cfg.Observability.Logging, "reconcile")

	ledger, ledgerErrs, err := parseLedger(*ledgerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading ledger: %v\n", err)
		os.Exit(1)
	}
	bank, bankErrs, err := parseBank(*bankPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading bank statement: %v\n", err)
		os.Exit(1)
	}
	for _, rowErr := range append(ledgerErrs, bankErrs...) {
		logger.Warn("row skipped", "row", rowErr.RowNumber, "error", rowErr.Error)
	}

	opts := []recon.Option{recon.WithLogger(logger)}
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, recon.WithSemanticScorer(
			semantic.NewOpenAIScorer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)))
	}
	engine, err := recon.New(cfg.EngineConfig(), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	result := engine.Reconcile(context.Background(), ledger, bank)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "encoding result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printSummary(result)
}

func parseLedger(path string) ([]recon.LedgerTransaction, []ingest.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ingest.ParseLedgerCSV(f)
}

func parseBank(path string) ([]recon.BankTransaction, []ingest.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ingest.ParseBankCSV(f, "cli")
}

func printSummary(result *recon.ComparisonResult) {
	s := result.Summary
	fmt.Printf("Ledger transactions:  %d\n", s.TotalLedger)
	fmt.Printf("Bank transactions:    %d\n", s.TotalBank)
	fmt.Printf("Matched:              %d (%.1f%%)\n", s.MatchedCount, s.MatchPercentage)
	fmt.Printf("Ledger only:          %d\n", s.LedgerOnlyCount)
	fmt.Printf("Bank only:            %d\n", s.BankOnlyCount)
	fmt.Printf("Duplicates merged:    %d\n", s.DuplicatesMerged)
	for _, w := range s.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	if len(result.Matched) > 0 {
		fmt.Println("\nMatches:")
		for _, m := range result.Matched {
			fmt.Printf("  %s  %10.2f  %-30s -> %-30s  %.2f (%s)\n",
				m.Ledger.TransactionDate.Format("2006-01-02"),
				m.Ledger.Amount,
				truncate(m.Ledger.MerchantName, 30),
				truncate(m.Bank.Description, 30),
				m.Confidence,
				m.MatchType,
			)
		}
	}
	if len(result.LedgerOnly) > 0 {
		fmt.Println("\nLedger only:")
		for _, tx := range result.LedgerOnly {
			fmt.Printf("  %s  %10.2f  %s\n",
				tx.TransactionDate.Format("2006-01-02"), tx.Amount, tx.MerchantName)
		}
	}
	if len(result.BankOnly) > 0 {
		fmt.Println("\nBank only:")
		for _, tx := range result.BankOnly {
			fmt.Printf("  %s  %10.2f  %s\n",
				tx.Date.Format("2006-01-02"), tx.Amount, tx.Description)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
