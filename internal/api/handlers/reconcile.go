package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerlens/backend/internal/api/dto"
	"github.com/ledgerlens/backend/internal/application/service"
	"github.com/ledgerlens/backend/internal/domain/recon"
)

// ReconcileHandler runs reconciliation and standalone duplicate detection.
type ReconcileHandler struct {
	recons *service.ReconcileService
	logger *slog.Logger
}

// NewReconcileHandler creates a reconcile handler.
func NewReconcileHandler(recons *service.ReconcileService, logger *slog.Logger) *ReconcileHandler {
	return &ReconcileHandler{recons: recons, logger: logger}
}

// Reconcile handles POST /api/reconcile. The body carries optional engine
// overrides; an empty body runs with the configured defaults.
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req service.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return
	}

	result, err := h.recons.Reconcile(c.Request.Context(), req)
	if err != nil {
		var cfgErr *recon.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, dto.ValidationError(cfgErr.Error()))
			return
		}
		h.logger.Error("reconciliation failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, result)
}

// Deduplicate handles POST /api/transactions/deduplicate.
func (h *ReconcileHandler) Deduplicate(c *gin.Context) {
	var req dto.DeduplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return
	}

	groups, warnings, err := h.recons.Deduplicate(c.Request.Context(), req.Apply)
	if err != nil {
		h.logger.Error("duplicate detection failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	if groups == nil {
		groups = []recon.DuplicateGroup{}
	}
	c.JSON(http.StatusOK, dto.DeduplicateResponse{
		Groups:   groups,
		Warnings: warnings,
		Applied:  req.Apply,
	})
}
