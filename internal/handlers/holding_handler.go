package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/services"
)

// HoldingHandler handles holding-related requests.
type HoldingHandler struct {
	holdingService services.HoldingServicer
	auditService   services.AuditServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, auditService services.AuditServicer) *HoldingHandler {
	return &HoldingHandler{holdingService: holdingService, auditService: auditService}
}

// CreateHoldingRequest represents the request payload for creating a holding.
type CreateHoldingRequest struct {
	Symbol       string          `json:"symbol" binding:"required,min=1,max=20"`
	Exchange     models.Exchange `json:"exchange" binding:"required,exchange"`
	Quantity     int64           `json:"quantity" binding:"required,gt=0"`
	AveragePrice float64         `json:"average_price" binding:"required,gt=0"`
	CurrentPrice float64         `json:"current_price" binding:"omitempty,gt=0"`
}

// UpdateHoldingRequest represents the request payload for updating a holding.
// Omitted fields are left unchanged.
type UpdateHoldingRequest struct {
	Quantity     *int64   `json:"quantity" binding:"omitempty,gte=0"`
	AveragePrice *float64 `json:"average_price" binding:"omitempty,gt=0"`
	CurrentPrice *float64 `json:"current_price" binding:"omitempty,gt=0"`
}

// BulkPricesRequest represents the request payload for a bulk price update.
type BulkPricesRequest struct {
	Updates []services.PriceUpdate `json:"updates" binding:"required,min=1,max=100,dive"`
}

// CreateHolding handles adding a new holding.
// @Summary     Create holding
// @Description Add a new holding to the user's portfolio
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHoldingRequest true "Holding details"
// @Success     201 {object} models.Holding "Holding created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Holding already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings [post]
func (h *HoldingHandler) CreateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.CreateHolding(userID, req.Symbol, req.Exchange, req.Quantity, req.AveragePrice, req.CurrentPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_HOLDING", "holding", holding.ID, c.ClientIP(),
		map[string]interface{}{"symbol": holding.Symbol, "quantity": req.Quantity})

	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// GetPortfolio handles listing holdings with the portfolio summary.
// @Summary     Get portfolio
// @Description Get all holdings with per-holding metrics and the portfolio summary
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioReport "Holdings and summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings [get]
func (h *HoldingHandler) GetPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.holdingService.GetPortfolio(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetHolding handles retrieving a specific holding.
// @Summary     Get holding by ID
// @Description Get a specific holding with its derived metrics
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Holding ID"
// @Success     200 {object} models.Holding "Holding details"
// @Failure     400 {object} ErrorResponse "Invalid holding ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/{id} [get]
func (h *HoldingHandler) GetHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	holding, err := h.holdingService.GetHoldingByID(userID, holdingID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// UpdateHolding handles updating a holding's stored fields.
// @Summary     Update holding
// @Description Update quantity, average price and/or current price of a holding
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Holding ID"
// @Param       request body UpdateHoldingRequest true "Fields to update"
// @Success     200 {object} models.Holding "Updated holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/{id} [put]
func (h *HoldingHandler) UpdateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.UpdateHolding(userID, holdingID, req.Quantity, req.AveragePrice, req.CurrentPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_HOLDING", "holding", holdingID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// DeleteHolding handles removing a holding.
// @Summary     Delete holding
// @Description Remove a holding from the portfolio, e.g. after a full exit
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Holding ID"
// @Success     204 "Holding deleted"
// @Failure     400 {object} ErrorResponse "Invalid holding ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/{id} [delete]
func (h *HoldingHandler) DeleteHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.holdingService.DeleteHolding(userID, holdingID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_HOLDING", "holding", holdingID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// BulkUpdatePrices handles a bulk current-price update.
// @Summary     Bulk update prices
// @Description Update current prices for multiple holdings; bad items are reported without aborting the batch
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkPricesRequest true "Price updates"
// @Success     200 {object} services.BulkUpdateResult "Per-item results"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/prices [put]
func (h *HoldingHandler) BulkUpdatePrices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.holdingService.BulkUpdatePrices(userID, req.Updates)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "BULK_UPDATE_HOLDING_PRICES", "holding", 0, c.ClientIP(),
		map[string]interface{}{"updated": result.Updated, "failed": len(result.Errors)})

	c.JSON(http.StatusOK, result)
}

// RefreshPrices handles a simulated price refresh across all holdings.
// @Summary     Refresh prices
// @Description Advance every holding's current price by one simulated tick
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioReport "Refreshed holdings and summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/refresh [post]
func (h *HoldingHandler) RefreshPrices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.holdingService.RefreshPrices(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
