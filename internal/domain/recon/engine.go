package recon

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Engine runs reconciliation over one bounded snapshot of transactions per
// invocation. It holds no mutable state across invocations; the only I/O it
// can perform is through the optional semantic scorer.
type Engine struct {
	cfg      Config
	semantic SemanticScorer
	logger   *slog.Logger
}

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithSemanticScorer attaches an external semantic scorer. Its failures
// degrade to rule-based scores, never to run failures.
func WithSemanticScorer(s SemanticScorer) Option {
	return func(e *Engine) { e.semantic = s }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New validates the config and builds an engine. Validation happens here —
// before any transaction is processed — so a bad threshold or weight fails
// the invocation outright instead of skewing confidences.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Reconcile compares the ledger snapshot against the bank snapshot and always
// returns a complete ComparisonResult: partial failures (unscorable pairs,
// unavailable semantic scoring, unmergeable duplicate groups) degrade
// precision, not availability.
func (e *Engine) Reconcile(ctx context.Context, ledger []LedgerTransaction, bank []BankTransaction) *ComparisonResult {
	// Duplicate merging must finish before candidate generation; merges
	// change the ledger set the matcher operates on.
	deduped, groups, warnings := e.DetectDuplicates(ctx, ledger)

	sort.Slice(deduped, func(i, j int) bool { return deduped[i].ID < deduped[j].ID })
	idx := newBankIndex(bank)

	candidates := e.scoreAll(ctx, deduped, idx)
	accepted := assign(candidates, e.cfg.MatchThreshold)

	result := buildResult(deduped, bank, accepted, groups, warnings)

	e.logger.Info("reconciliation complete",
		"ledger", result.Summary.TotalLedger,
		"bank", result.Summary.TotalBank,
		"matched", result.Summary.MatchedCount,
		"duplicates_merged", result.Summary.DuplicatesMerged,
	)
	return result
}

// scoreAll fans candidate scoring out across a bounded worker pool. Scoring
// of distinct ledger transactions is independent; results are collected by
// ledger position so worker scheduling cannot change the outcome. The global
// sort in assign is the single-threaded join point.
func (e *Engine) scoreAll(ctx context.Context, ledger []LedgerTransaction, idx *bankIndex) []MatchCandidate {
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(ledger) {
		workers = len(ledger)
	}
	if workers == 0 {
		return nil
	}

	perLedger := make([][]MatchCandidate, len(ledger))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tx := ledger[i]
				bankTxs := idx.candidates(tx, e.cfg)
				if len(bankTxs) == 0 {
					continue // immediately ledger-only, scorer never runs
				}
				scored := make([]MatchCandidate, 0, len(bankTxs))
				for _, btx := range bankTxs {
					scored = append(scored, e.score(ctx, tx, btx))
				}
				perLedger[i] = scored
			}
		}()
	}

	for i := range ledger {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var all []MatchCandidate
	for _, scored := range perLedger {
		all = append(all, scored...)
	}
	return all
}
