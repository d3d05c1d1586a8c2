package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerlens/backend/internal/api/dto"
	"github.com/ledgerlens/backend/internal/application/service"
)

// UploadHandler ingests bank statement CSVs.
type UploadHandler struct {
	uploads *service.UploadService
	logger  *slog.Logger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(uploads *service.UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

// Upload handles POST /api/bank-transactions/upload. The statement is sent as
// a multipart file field named "file". Unparseable rows come back in the
// response; only an unreadable file is a request error.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("missing multipart file field \"file\""))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("cannot open uploaded file"))
		return
	}
	defer f.Close()

	result, err := h.uploads.UploadBankCSV(f)
	if err != nil {
		h.logger.Warn("statement upload rejected", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, result)
}
