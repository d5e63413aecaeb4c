package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/repository"
	"github.com/stocklens/backend/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) GetValuation(c *gin.Context) {
	report, err := h.reportService.Valuation(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute valuation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute valuation"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetSKUValuation(c *gin.Context) {
	sku := c.Param("sku")

	item, err := h.reportService.SKUValuation(c.Request.Context(), sku)
	if err != nil {
		log.Error().Err(err).Str("sku", sku).Msg("failed to compute sku valuation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute sku valuation"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ReportHandler) GetOrderProfit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	profit, err := h.reportService.OrderProfit(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		log.Error().Err(err).Int64("order_id", id).Msg("failed to compute order profit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute order profit"})
		return
	}

	c.JSON(http.StatusOK, profit)
}

func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.reportService.TopProducts(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to compute top products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute top products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": items, "count": len(items)})
}

// ExportValuation writes the valuation report to a CSV file on disk and
// streams it back as an attachment.
func (h *ReportHandler) ExportValuation(c *gin.Context) {
	path, err := h.reportService.ExportValuationCSV(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to export valuation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export valuation"})
		return
	}

	c.FileAttachment(path, "valuation.csv")
}
