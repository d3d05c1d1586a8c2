package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ledgerlens/backend/internal/api/dto"
	"github.com/ledgerlens/backend/internal/application/service"
	"github.com/ledgerlens/backend/internal/domain/recon"
)

// TransactionsHandler serves the stored transaction lists.
type TransactionsHandler struct {
	uploads *service.UploadService
	logger  *slog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(uploads *service.UploadService, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{uploads: uploads, logger: logger}
}

// ListBank handles GET /api/bank-transactions.
func (h *TransactionsHandler) ListBank(c *gin.Context) {
	limit, offset := pageParams(c)

	all, err := h.uploads.ListBankTransactions()
	if err != nil {
		h.logger.Error("listing bank transactions failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	start, end := dto.PageBounds(len(all), limit, offset)
	items := all[start:end]
	if items == nil {
		items = []recon.BankTransaction{}
	}
	c.JSON(http.StatusOK, dto.BankTransactionList{
		Items:  items,
		Total:  len(all),
		Limit:  limit,
		Offset: start,
	})
}

// ListLedger handles GET /api/transactions.
func (h *TransactionsHandler) ListLedger(c *gin.Context) {
	limit, offset := pageParams(c)

	all, err := h.uploads.ListLedgerTransactions()
	if err != nil {
		h.logger.Error("listing ledger transactions failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	start, end := dto.PageBounds(len(all), limit, offset)
	items := all[start:end]
	if items == nil {
		items = []recon.LedgerTransaction{}
	}
	c.JSON(http.StatusOK, dto.LedgerTransactionList{
		Items:  items,
		Total:  len(all),
		Limit:  limit,
		Offset: start,
	})
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
