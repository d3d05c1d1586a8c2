package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerlens/backend/internal/domain/recon"
	"github.com/ledgerlens/backend/internal/infrastructure/storage"
	"github.com/ledgerlens/backend/internal/observability"
)

// ReconcileRequest carries per-run overrides for the engine knobs. Nil fields
// keep the configured defaults.
type ReconcileRequest struct {
	DateWindowDays  *int     `json:"date_window_days,omitempty"`
	AmountTolerance *float64 `json:"amount_tolerance,omitempty"`
	MatchThreshold  *float64 `json:"match_threshold,omitempty"`

	// ApplyMerges persists duplicate-group merges discovered during the run.
	ApplyMerges bool `json:"apply_merges,omitempty"`
}

// ReconcileService orchestrates a reconciliation run: load both transaction
// sets from storage, run the engine, and optionally persist duplicate merges.
// The engine itself never touches the database.
type ReconcileService struct {
	cfg      recon.Config
	semantic recon.SemanticScorer
	storage  storage.Repository
	logger   *slog.Logger
}

// NewReconcileService creates a reconcile service. semantic may be nil, in
// which case scoring is purely rule-based.
func NewReconcileService(cfg recon.Config, semantic recon.SemanticScorer, store storage.Repository, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		cfg:      cfg,
		semantic: semantic,
		storage:  store,
		logger:   logger,
	}
}

// Reconcile runs one reconciliation over the current storage snapshot.
func (s *ReconcileService) Reconcile(ctx context.Context, req ReconcileRequest) (*recon.ComparisonResult, error) {
	start := time.Now()

	engine, err := s.buildEngine(req)
	if err != nil {
		observability.ReconciliationRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	ledger, err := s.storage.ListLedgerTransactions()
	if err != nil {
		observability.ReconciliationRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("loading ledger transactions: %w", err)
	}
	bank, err := s.storage.ListBankTransactions()
	if err != nil {
		observability.ReconciliationRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("loading bank transactions: %w", err)
	}

	result := engine.Reconcile(ctx, ledger, bank)

	if req.ApplyMerges {
		if err := s.persistMerges(result.DuplicateGroups); err != nil {
			observability.ReconciliationRuns.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	s.recordRunMetrics(result, time.Since(start))
	return result, nil
}

// Deduplicate runs duplicate detection alone over the stored ledger. When
// apply is true, merges are persisted.
func (s *ReconcileService) Deduplicate(ctx context.Context, apply bool) ([]recon.DuplicateGroup, []string, error) {
	engine, err := s.buildEngine(ReconcileRequest{})
	if err != nil {
		return nil, nil, err
	}

	ledger, err := s.storage.ListLedgerTransactions()
	if err != nil {
		return nil, nil, fmt.Errorf("loading ledger transactions: %w", err)
	}

	_, groups, warnings := engine.DetectDuplicates(ctx, ledger)

	if apply {
		if err := s.persistMerges(groups); err != nil {
			return nil, nil, err
		}
		for _, g := range groups {
			observability.DuplicatesMerged.Add(float64(len(g.MemberIDs) - 1))
		}
	}
	return groups, warnings, nil
}

func (s *ReconcileService) buildEngine(req ReconcileRequest) (*recon.Engine, error) {
	cfg := s.cfg
	if req.DateWindowDays != nil {
		cfg.DateWindowDays = *req.DateWindowDays
	}
	if req.AmountTolerance != nil {
		cfg.AmountTolerance = *req.AmountTolerance
	}
	if req.MatchThreshold != nil {
		cfg.MatchThreshold = *req.MatchThreshold
	}

	opts := []recon.Option{recon.WithLogger(s.logger)}
	if s.semantic != nil {
		opts = append(opts, recon.WithSemanticScorer(s.semantic))
	}
	return recon.New(cfg, opts...)
}

func (s *ReconcileService) persistMerges(groups []recon.DuplicateGroup) error {
	for _, g := range groups {
		if err := s.storage.ApplyMerge(g); err != nil {
			return fmt.Errorf("applying merge for transaction %d: %w", g.Merged.ID, err)
		}
		s.logger.Info("duplicate group merged",
			"merged_id", g.Merged.ID,
			"members", len(g.MemberIDs),
			"confidence", g.Confidence,
		)
	}
	return nil
}

func (s *ReconcileService) recordRunMetrics(result *recon.ComparisonResult, elapsed time.Duration) {
	observability.ReconciliationRuns.WithLabelValues("ok").Inc()
	observability.ReconciliationDuration.Observe(elapsed.Seconds())
	for _, pair := range result.Matched {
		observability.MatchedPairs.WithLabelValues(pair.MatchType).Inc()
	}
	observability.UnmatchedTransactions.WithLabelValues("ledger").Add(float64(result.Summary.LedgerOnlyCount))
	observability.UnmatchedTransactions.WithLabelValues("bank").Add(float64(result.Summary.BankOnlyCount))
	observability.DuplicatesMerged.Add(float64(result.Summary.DuplicatesMerged))
}
