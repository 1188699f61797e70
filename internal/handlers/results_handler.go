package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	adminDefaultTop = 3
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ResultsReader exposes the ranked standings
type ResultsReader interface {
	AllCategoryTallies(ctx context.Context) (*models.AllResults, error)
	CategoryResults(ctx context.Context, categoryID primitive.ObjectID, n int) (*models.CategoryResults, error)
}

// ResultsHandler serves published results and the admin dashboard
type ResultsHandler struct {
	gate    services.PhaseAuthorizer
	results ResultsReader
	log     *slog.Logger
}

// NewResultsHandler creates a new ResultsHandler
func NewResultsHandler(gate services.PhaseAuthorizer, results ResultsReader, log *slog.Logger) *ResultsHandler {
	return &ResultsHandler{
		gate:    gate,
		results: results,
		log:     log,
	}
}

// GetResults handles GET /results. Every participant is listed.
func (h *ResultsHandler) GetResults(c *gin.Context) {
	if err := h.gate.AuthorizeResultsRead(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	all, err := h.results.AllCategoryTallies(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categoryResults": all.CategoryResults})
}

// GetCategoryResults handles GET /results/:categoryId?top=N
func (h *ResultsHandler) GetCategoryResults(c *gin.Context) {
	if err := h.gate.AuthorizeResultsRead(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	id, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	top, ok := queryTop(c, 0)
	if !ok {
		return
	}

	result, err := h.results.CategoryResults(c.Request.Context(), id, top)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAdminResults handles GET /admin/results. It ignores the phase.
func (h *ResultsHandler) GetAdminResults(c *gin.Context) {
	top, ok := queryTop(c, adminDefaultTop)
	if !ok {
		return
	}

	all, err := h.results.AllCategoryTallies(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, services.Truncate(all, top))
}

// ExportResults handles GET /admin/results/export
func (h *ResultsHandler) ExportResults(c *gin.Context) {
	all, err := h.results.AllCategoryTallies(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteResultsWorkbook(&buf, all); err != nil {
		respondError(c, h.log, fmt.Errorf("failed to render workbook: %w", err))
		return
	}

	fileName := fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
