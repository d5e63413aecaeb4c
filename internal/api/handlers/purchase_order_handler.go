package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
	"github.com/stocklens/backend/internal/service"
)

type PurchaseOrderHandler struct {
	poService *service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService *service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req domain.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	po, err := h.poService.Create(c.Request.Context(), &req)
	if err != nil {
		log.Error().Err(err).Msg("failed to create purchase order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create purchase order"})
		return
	}

	c.JSON(http.StatusCreated, po)
}

func (h *PurchaseOrderHandler) List(c *gin.Context) {
	orders, err := h.poService.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list purchase orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list purchase orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase_orders": orders, "count": len(orders)})
}

func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	po, err := h.poService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
			return
		}
		log.Error().Err(err).Int64("po_id", id).Msg("failed to get purchase order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get purchase order"})
		return
	}

	c.JSON(http.StatusOK, po)
}

func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req domain.UpdatePOStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	po, err := h.poService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Int64("po_id", id).Msg("failed to update purchase order status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update purchase order status"})
		}
		return
	}

	c.JSON(http.StatusOK, po)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
