package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
	"github.com/stocklens/backend/internal/service"
)

type ReturnHandler struct {
	returnService *service.ReturnService
}

func NewReturnHandler(returnService *service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

func (h *ReturnHandler) Create(c *gin.Context) {
	var req domain.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ret, err := h.returnService.Create(c.Request.Context(), &req)
	if err != nil {
		log.Error().Err(err).Msg("failed to create return")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create return"})
		return
	}

	c.JSON(http.StatusCreated, ret)
}

func (h *ReturnHandler) List(c *gin.Context) {
	returns, err := h.returnService.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list returns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list returns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"returns": returns, "count": len(returns)})
}

func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ret, err := h.returnService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "return not found"})
			return
		}
		log.Error().Err(err).Int64("return_id", id).Msg("failed to get return")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get return"})
		return
	}

	c.JSON(http.StatusOK, ret)
}

func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req domain.UpdateReturnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ret, err := h.returnService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "return not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Int64("return_id", id).Msg("failed to update return status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update return status"})
		}
		return
	}

	c.JSON(http.StatusOK, ret)
}
