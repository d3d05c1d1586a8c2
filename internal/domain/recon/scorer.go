package recon

import (
	"context"
	"math"
)

// score computes the composite confidence for one (ledger, bank) pair.
//
// An exact amount on the same day short-circuits to the configured
// perfect-match confidence so a perfect match can never score below a
// near-duplicate fuzzy match. Otherwise the confidence is the weighted sum of
// amount closeness, date closeness, and merchant similarity; when no merchant
// text is available its weight is redistributed proportionally across the
// remaining terms.
func (e *Engine) score(ctx context.Context, ledger LedgerTransaction, bank BankTransaction) MatchCandidate {
	gap := DayGap(ledger.TransactionDate, bank.Date)
	amountDiff := math.Abs(ledger.Amount - bank.Amount)

	if amountDiff <= e.cfg.AmountTolerance && gap == 0 {
		return MatchCandidate{
			LedgerID:   ledger.ID,
			BankID:     bank.ID,
			Confidence: e.cfg.PerfectMatchConfidence,
			Breakdown:  ScoreBreakdown{Amount: 1, Date: 1, Merchant: TokenOverlap(merchantText(ledger), bank.Description)},
			DayGap:     0,
			Exact:      true,
		}
	}

	amountScore := amountCloseness(ledger.Amount, bank.Amount, e.cfg.AmountTolerance)
	dateScore := dateCloseness(gap, e.cfg.DateWindowDays)

	breakdown := ScoreBreakdown{Amount: amountScore, Date: dateScore}

	ledgerText := merchantText(ledger)
	var confidence float64
	if ledgerText == "" || bank.Description == "" {
		// No merchant signal on one side; redistribute its weight.
		remaining := e.cfg.Weights.Amount + e.cfg.Weights.Date
		if remaining > 0 {
			confidence = (e.cfg.Weights.Amount*amountScore + e.cfg.Weights.Date*dateScore) / remaining
		}
	} else {
		merchantScore := TokenOverlap(ledgerText, bank.Description)
		if e.semantic != nil {
			if judgment, err := e.semanticScore(ctx, ledgerText, bank.Description); err == nil {
				breakdown.Semantic = judgment.Confidence
				merchantScore = (merchantScore + judgment.Confidence) / 2
			}
		}
		breakdown.Merchant = merchantScore
		confidence = e.cfg.Weights.Amount*amountScore +
			e.cfg.Weights.Date*dateScore +
			e.cfg.Weights.Merchant*merchantScore
	}

	return MatchCandidate{
		LedgerID:   ledger.ID,
		BankID:     bank.ID,
		Confidence: confidence,
		Breakdown:  breakdown,
		DayGap:     gap,
	}
}

// amountCloseness is 1 minus the difference normalized by the larger absolute
// amount, floored at 0. Differences inside the absolute tolerance count as
// identical.
func amountCloseness(a, b, tolerance float64) float64 {
	diff := math.Abs(a - b)
	if diff <= tolerance {
		return 1
	}
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return 0
	}
	score := 1 - diff/denom
	if score < 0 {
		return 0
	}
	return score
}

// dateCloseness is 1 minus the day gap normalized by one more than the
// window, floored at 0, so a gap at the edge of the window still contributes
// a small positive term.
func dateCloseness(gap, windowDays int) float64 {
	score := 1 - float64(gap)/float64(windowDays+1)
	if score < 0 {
		return 0
	}
	return score
}

// semanticScore bounds one external scorer call with the configured timeout.
// Every failure is reported as ErrScoringUnavailable; callers fall back to
// the rule-based score.
func (e *Engine) semanticScore(ctx context.Context, a, b string) (SemanticJudgment, error) {
	if e.cfg.SemanticTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.SemanticTimeout)
		defer cancel()
	}
	judgment, err := e.semantic.Score(ctx, a, b)
	if err != nil {
		e.logger.Warn("semantic scorer failed, using rule-based score", "error", err)
		return SemanticJudgment{}, ErrScoringUnavailable
	}
	if judgment.Confidence < 0 || judgment.Confidence > 1 {
		e.logger.Warn("semantic scorer returned out-of-range confidence", "confidence", judgment.Confidence)
		return SemanticJudgment{}, ErrScoringUnavailable
	}
	return judgment, nil
}
