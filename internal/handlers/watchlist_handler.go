package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/services"
)

// WatchlistHandler handles watchlist-related requests.
type WatchlistHandler struct {
	watchlistService services.WatchlistServicer
	auditService     services.AuditServicer
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService services.WatchlistServicer, auditService services.AuditServicer) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService, auditService: auditService}
}

// CreateWatchlistRequest represents the request payload for creating a watchlist.
type CreateWatchlistRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	IsDefault bool   `json:"is_default"`
}

// UpdateWatchlistRequest represents the request payload for updating a watchlist.
// Omitted fields are left unchanged.
type UpdateWatchlistRequest struct {
	Name      string `json:"name" binding:"omitempty,min=1,max=100"`
	IsDefault *bool  `json:"is_default"`
}

// ReorderRequest represents the request payload for reordering watchlist entries.
type ReorderRequest struct {
	Entries []services.StockRef `json:"entries" binding:"required,min=1,dive"`
}

// CreateWatchlist handles creating a new watchlist.
// @Summary     Create watchlist
// @Description Create a named watchlist; names are unique per user
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWatchlistRequest true "Watchlist details"
// @Success     201 {object} models.Watchlist "Watchlist created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Name already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists [post]
func (h *WatchlistHandler) CreateWatchlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	watchlist, err := h.watchlistService.CreateWatchlist(userID, req.Name, req.IsDefault)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_WATCHLIST", "watchlist", watchlist.ID, c.ClientIP(),
		map[string]interface{}{"name": watchlist.Name})

	c.JSON(http.StatusCreated, gin.H{"watchlist": watchlist})
}

// GetWatchlists handles listing the user's watchlists.
// @Summary     Get watchlists
// @Description Get all watchlists with their entries in display order
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Watchlist "Watchlists"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists [get]
func (h *WatchlistHandler) GetWatchlists(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlists, err := h.watchlistService.GetUserWatchlists(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlists": watchlists})
}

// GetWatchlist handles retrieving a specific watchlist.
// @Summary     Get watchlist by ID
// @Description Get a specific watchlist with its entries in display order
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Watchlist ID"
// @Success     200 {object} models.Watchlist "Watchlist details"
// @Failure     400 {object} ErrorResponse "Invalid watchlist ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Watchlist not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/{id} [get]
func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlistID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlist, err := h.watchlistService.GetWatchlistByID(userID, watchlistID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": watchlist})
}

// UpdateWatchlist handles renaming a watchlist or toggling its default flag.
// @Summary     Update watchlist
// @Description Rename a watchlist and/or set it as the default
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Watchlist ID"
// @Param       request body UpdateWatchlistRequest true "Fields to update"
// @Success     200 {object} models.Watchlist "Updated watchlist"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Watchlist not found"
// @Failure     409 {object} ErrorResponse "Name already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/{id} [put]
func (h *WatchlistHandler) UpdateWatchlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlistID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	watchlist, err := h.watchlistService.UpdateWatchlist(userID, watchlistID, req.Name, req.IsDefault)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_WATCHLIST", "watchlist", watchlistID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"watchlist": watchlist})
}

// DeleteWatchlist handles deleting a watchlist.
// @Summary     Delete watchlist
// @Description Delete a watchlist and its entries
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Watchlist ID"
// @Success     204 "Watchlist deleted"
// @Failure     400 {object} ErrorResponse "Invalid watchlist ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Watchlist not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/{id} [delete]
func (h *WatchlistHandler) DeleteWatchlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlistID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.watchlistService.DeleteWatchlist(userID, watchlistID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_WATCHLIST", "watchlist", watchlistID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// AddStock handles appending a stock to a watchlist.
// @Summary     Add stock to watchlist
// @Description Append a stock to the end of a watchlist
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Watchlist ID"
// @Param       request body services.StockRef true "Stock reference"
// @Success     200 {object} models.Watchlist "Updated watchlist"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Watchlist not found"
// @Failure     409 {object} ErrorResponse "Stock already in watchlist"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/{id}/stocks [post]
func (h *WatchlistHandler) AddStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlistID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.StockRef
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	watchlist, err := h.watchlistService.AddStock(userID, watchlistID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_WATCHLIST_STOCK", "watchlist", watchlistID, c.ClientIP(),
		map[string]interface{}{"symbol": req.Symbol, "exchange": string(req.Exchange)})

	c.JSON(http.StatusOK, gin.H{"watchlist": watchlist})
}

// AddToDefault handles appending a stock to the default watchlist.
// @Summary     Add stock to default watchlist
// @Description Append a stock to the default watchlist, creating it on first use
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body services.StockRef true "Stock reference"
// @Success     200 {object} models.Watchlist "Updated default watchlist"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Stock already in watchlist"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/stocks [post]
func (h *WatchlistHandler) AddToDefault(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.StockRef
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	watchlist, err := h.watchlistService.AddToDefault(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_WATCHLIST_STOCK", "watchlist", watchlist.ID, c.ClientIP(),
		map[string]interface{}{"symbol": req.Symbol, "exchange": string(req.Exchange)})

	c.JSON(http.StatusOK, gin.H{"watchlist": watchlist})
}

// RemoveStock handles removing a stock from a watchlist.
// @Summary     Remove stock from watchlist
// @Description Remove a stock from a watchlist, closing the gap in display order
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Watchlist ID"
// @Param       request body services.StockRef true "Stock reference"
// @Success     200 {object} models.Watchlist "Updated watchlist"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Watchlist or stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/{id}/stocks [delete]
func (h *WatchlistHandler) RemoveStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlistID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.StockRef
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	watchlist, err := h.watchlistService.RemoveStock(userID, watchlistID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_WATCHLIST_STOCK", "watchlist", watchlistID, c.ClientIP(),
		map[string]interface{}{"symbol": req.Symbol, "exchange": string(req.Exchange)})

	c.JSON(http.StatusOK, gin.H{"watchlist": watchlist})
}

// Reorder handles rearranging a watchlist's entries.
// @Summary     Reorder watchlist
// @Description Rearrange a watchlist's entries; the request must be an exact permutation of the current set
// @Tags        watchlists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Watchlist ID"
// @Param       request body ReorderRequest true "New order"
// @Success     200 {object} models.Watchlist "Reordered watchlist"
// @Failure     400 {object} ErrorResponse "Invalid input or set mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Watchlist not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /watchlists/{id}/reorder [put]
func (h *WatchlistHandler) Reorder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	watchlistID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	watchlist, err := h.watchlistService.Reorder(userID, watchlistID, req.Entries)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": watchlist})
}
