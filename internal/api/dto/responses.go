package dto

import "github.com/ledgerlens/backend/internal/domain/recon"

// BankTransactionList is the paginated envelope for GET /api/bank-transactions.
// Total counts all stored rows, not the page.
type BankTransactionList struct {
	Items  []recon.BankTransaction `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// LedgerTransactionList is the paginated envelope for GET /api/transactions.
type LedgerTransactionList struct {
	Items  []recon.LedgerTransaction `json:"items"`
	Total  int                       `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

// DeduplicateRequest controls the standalone duplicate-detection endpoint.
type DeduplicateRequest struct {
	// Apply persists the merges; false returns a report only.
	Apply bool `json:"apply"`
}

// DeduplicateResponse reports the detected duplicate groups.
type DeduplicateResponse struct {
	Groups   []recon.DuplicateGroup `json:"groups"`
	Warnings []string               `json:"warnings,omitempty"`
	Applied  bool                   `json:"applied"`
}

// HealthResponse is the load-balancer health body.
type HealthResponse struct {
	Status string `json:"status"`
}

// PageBounds clamps offset and applies limit to a slice length, returning the
// half-open range [start, end) to serve.
func PageBounds(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return offset, end
}
