package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/pagination"
	"tradebook/internal/services"
)

// OrderHandler handles order-related requests.
type OrderHandler struct {
	orderService services.OrderServicer
	auditService services.AuditServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService services.OrderServicer, auditService services.AuditServicer) *OrderHandler {
	return &OrderHandler{orderService: orderService, auditService: auditService}
}

// PlaceOrderRequest represents the request payload for placing an order.
type PlaceOrderRequest struct {
	Symbol          string                 `json:"symbol" binding:"required,min=1,max=20"`
	Exchange        models.Exchange        `json:"exchange" binding:"required,exchange"`
	TransactionType models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	OrderType       models.OrderType       `json:"order_type" binding:"required,order_type"`
	Product         models.Product         `json:"product" binding:"required,product"`
	Quantity        int64                  `json:"quantity" binding:"required,gt=0"`
	Price           float64                `json:"price" binding:"omitempty,gt=0"`
	TriggerPrice    float64                `json:"trigger_price" binding:"omitempty,gt=0"`
	Validity        models.OrderValidity   `json:"validity" binding:"omitempty,order_validity"`
}

// ModifyOrderRequest represents the request payload for modifying an order.
// Omitted fields are left unchanged.
type ModifyOrderRequest struct {
	Quantity     *int64                `json:"quantity" binding:"omitempty,gt=0"`
	Price        *float64              `json:"price" binding:"omitempty,gt=0"`
	TriggerPrice *float64              `json:"trigger_price" binding:"omitempty,gt=0"`
	Validity     *models.OrderValidity `json:"validity" binding:"omitempty,order_validity"`
}

// UpdateOrderStatusRequest represents the request payload for a status transition.
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,order_status"`
}

// ListOrdersQuery represents the query parameters for listing orders.
type ListOrdersQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,order_status"`
	Symbol string `form:"symbol" binding:"omitempty,max=20"`
}

// PlaceOrder handles placing a new order.
// @Summary     Place order
// @Description Place a new order; it is recorded as PENDING
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PlaceOrderRequest true "Order details"
// @Success     201 {object} models.Order "Order placed"
// @Failure     400 {object} ErrorResponse "Invalid order"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidOrder, err.Error()))
		return
	}

	validity := req.Validity
	if validity == "" {
		validity = models.ValidityDay
	}

	order, err := h.orderService.PlaceOrder(userID, services.OrderInput{
		Symbol:          req.Symbol,
		Exchange:        req.Exchange,
		TransactionType: req.TransactionType,
		OrderType:       req.OrderType,
		Product:         req.Product,
		Quantity:        req.Quantity,
		Price:           req.Price,
		TriggerPrice:    req.TriggerPrice,
		Validity:        validity,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PLACE_ORDER", "order", order.ID, c.ClientIP(),
		map[string]interface{}{
			"symbol":           order.Symbol,
			"transaction_type": string(order.TransactionType),
			"order_type":       string(order.OrderType),
			"quantity":         order.Quantity,
		})

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrders handles listing the user's orders.
// @Summary     Get orders
// @Description Get a paginated list of orders, newest first, with optional filters
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status"  Enums(PENDING, OPEN, EXECUTED, CANCELLED, REJECTED)
// @Param       symbol    query string false "Filter by symbol"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Order] "Paginated orders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /orders [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.OrderFilter{Symbol: query.Symbol}
	if query.Status != "" {
		status := models.OrderStatus(query.Status)
		filter.Status = &status
	}

	result, err := h.orderService.GetUserOrders(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder handles retrieving a specific order.
// @Summary     Get order by ID
// @Description Get a specific order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Success     200 {object} models.Order "Order details"
// @Failure     400 {object} ErrorResponse "Invalid order ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ModifyOrder handles modifying an open order.
// @Summary     Modify order
// @Description Modify quantity, price, trigger price and/or validity of an open order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Order ID"
// @Param       request body ModifyOrderRequest true "Fields to modify"
// @Success     200 {object} models.Order "Modified order"
// @Failure     400 {object} ErrorResponse "Invalid order"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     409 {object} ErrorResponse "Order no longer open"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /orders/{id} [put]
func (h *OrderHandler) ModifyOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ModifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidOrder, err.Error()))
		return
	}

	order, err := h.orderService.ModifyOrder(userID, orderID, services.OrderPatch{
		Quantity:     req.Quantity,
		Price:        req.Price,
		TriggerPrice: req.TriggerPrice,
		Validity:     req.Validity,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "MODIFY_ORDER", "order", orderID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder handles cancelling an open order.
// @Summary     Cancel order
// @Description Cancel an order that is still PENDING or OPEN
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Success     200 {object} models.Order "Cancelled order"
// @Failure     400 {object} ErrorResponse "Invalid order ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     409 {object} ErrorResponse "Order no longer open"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.CancelOrder(userID, orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CANCEL_ORDER", "order", orderID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateStatus handles moving an open order to a terminal status.
// @Summary     Update order status
// @Description Move an open order to EXECUTED, CANCELLED or REJECTED
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Order ID"
// @Param       request body UpdateOrderStatusRequest true "Target status"
// @Success     200 {object} models.Order "Updated order"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     409 {object} ErrorResponse "Order no longer open"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(userID, orderID, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_ORDER_STATUS", "order", orderID, c.ClientIP(),
		map[string]interface{}{"status": string(req.Status)})

	c.JSON(http.StatusOK, gin.H{"order": order})
}
