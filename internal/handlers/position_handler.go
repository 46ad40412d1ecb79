package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/services"
)

// PositionHandler handles position-related requests.
type PositionHandler struct {
	positionService services.PositionServicer
	auditService    services.AuditServicer
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positionService services.PositionServicer, auditService services.AuditServicer) *PositionHandler {
	return &PositionHandler{positionService: positionService, auditService: auditService}
}

// OpenPositionRequest represents the request payload for opening a position.
type OpenPositionRequest struct {
	Symbol          string                 `json:"symbol" binding:"required,min=1,max=20"`
	Exchange        models.Exchange        `json:"exchange" binding:"required,exchange"`
	Product         models.Product         `json:"product" binding:"required,product"`
	TransactionType models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	Quantity        int64                  `json:"quantity" binding:"required,gt=0"`
	Price           float64                `json:"price" binding:"required,gt=0"`
	Multiplier      int64                  `json:"multiplier" binding:"omitempty,gte=1"`
}

// RecordFillRequest represents the request payload for applying a fill.
type RecordFillRequest struct {
	TransactionType models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	Quantity        int64                  `json:"quantity" binding:"required,gt=0"`
	Price           float64                `json:"price" binding:"required,gt=0"`
}

// UpdateLTPRequest represents the request payload for updating the LTP.
type UpdateLTPRequest struct {
	LastTradedPrice float64 `json:"last_traded_price" binding:"required,gt=0"`
}

// SquareOffRequest represents the request payload for squaring off a position.
type SquareOffRequest struct {
	ExitPrice float64 `json:"exit_price" binding:"required,gt=0"`
}

// OpenPosition handles opening a new position.
// @Summary     Open position
// @Description Open a position with an initial fill
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OpenPositionRequest true "Position details"
// @Success     201 {object} models.Position "Position opened"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Position already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions [post]
func (h *PositionHandler) OpenPosition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OpenPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	position, err := h.positionService.OpenPosition(userID, services.OpenPositionInput{
		Symbol:          req.Symbol,
		Exchange:        req.Exchange,
		Product:         req.Product,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Price:           req.Price,
		Multiplier:      req.Multiplier,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "OPEN_POSITION", "position", position.ID, c.ClientIP(),
		map[string]interface{}{"symbol": position.Symbol, "product": string(req.Product), "quantity": req.Quantity})

	c.JSON(http.StatusCreated, gin.H{"position": position})
}

// GetPositions handles listing open positions with P&L totals.
// @Summary     Get positions
// @Description Get all open positions with derived P&L and day/total roll-up
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PositionBook "Positions and totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions [get]
func (h *PositionHandler) GetPositions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	book, err := h.positionService.GetUserPositions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// GetPosition handles retrieving a specific position.
// @Summary     Get position by ID
// @Description Get a specific position with its derived P&L
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Position ID"
// @Success     200 {object} models.Position "Position details"
// @Failure     400 {object} ErrorResponse "Invalid position ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/{id} [get]
func (h *PositionHandler) GetPosition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	position, err := h.positionService.GetPositionByID(userID, positionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"position": position})
}

// RecordFill handles applying a fill to a position.
// @Summary     Record fill
// @Description Apply a buy or sell fill to an open position
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Position ID"
// @Param       request body RecordFillRequest true "Fill details"
// @Success     200 {object} models.Position "Updated position"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/{id}/fills [post]
func (h *PositionHandler) RecordFill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	position, err := h.positionService.RecordFill(userID, positionID, req.TransactionType, req.Quantity, req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECORD_FILL", "position", positionID, c.ClientIP(),
		map[string]interface{}{"side": string(req.TransactionType), "quantity": req.Quantity, "price": req.Price})

	c.JSON(http.StatusOK, gin.H{"position": position})
}

// UpdateLTP handles updating a position's last traded price.
// @Summary     Update LTP
// @Description Update the last traded price of a position
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Position ID"
// @Param       request body UpdateLTPRequest true "New LTP"
// @Success     200 {object} models.Position "Updated position"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/{id}/ltp [put]
func (h *PositionHandler) UpdateLTP(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	position, err := h.positionService.UpdateLTP(userID, positionID, req.LastTradedPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"position": position})
}

// SquareOff handles closing a position at an exit price.
// @Summary     Square off position
// @Description Close a position, realizing the open P&L at the exit price
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Position ID"
// @Param       request body SquareOffRequest true "Exit price"
// @Success     200 {object} services.SquareOffResult "Realized outcome"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/{id}/squareoff [post]
func (h *PositionHandler) SquareOff(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SquareOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.positionService.SquareOff(userID, positionID, req.ExitPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SQUARE_OFF_POSITION", "position", positionID, c.ClientIP(),
		map[string]interface{}{"exit_price": req.ExitPrice, "realized_pnl": result.RealizedPnL})

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// BulkUpdateLTP handles a bulk LTP update.
// @Summary     Bulk update LTPs
// @Description Update last traded prices for multiple positions; bad items are reported without aborting the batch
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkPricesRequest true "LTP updates"
// @Success     200 {object} services.BulkUpdateResult "Per-item results"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/ltp [put]
func (h *PositionHandler) BulkUpdateLTP(c *gin.Context) {
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

	result, err := h.positionService.BulkUpdateLTP(userID, req.Updates)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshPrices handles a simulated LTP refresh across all positions.
// @Summary     Refresh LTPs
// @Description Advance every position's LTP by one simulated tick
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PositionBook "Refreshed positions and totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/refresh [post]
func (h *PositionHandler) RefreshPrices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	book, err := h.positionService.RefreshPrices(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}
