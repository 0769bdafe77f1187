package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
)

// budgetHandler handles HTTP requests for budgets and their items. Item
// routes address items by id directly; the owning budget is found by scan.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{
		budgetService: bs,
	}
}

// registerBudgetRoutes registers the budget and item routes.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := rg.Group("/budgets")
	{
		budgets.GET("/:id", h.getBudget)
		budgets.GET("/:id/percentages", h.getPercentages)
		budgets.PUT("/:id/maxspend", h.setMaxSpend)
		budgets.POST("/:id/items", h.addItem)
	}

	items := rg.Group("/items")
	{
		items.PUT("/:id/quantity", h.changeQuantity)
		items.DELETE("/:id", h.removeItem)
	}
}

// getBudget returns the budget with its items in lexical name order.
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// getPercentages returns each item's share of the budget's total cost.
func (h *budgetHandler) getPercentages(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	percentages, err := h.budgetService.GetPercentages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to compute percentages")
		return
	}

	out := make(map[string]string, len(percentages))
	for name, pct := range percentages {
		out[name] = pct.StringFixed(2)
	}
	c.JSON(http.StatusOK, gin.H{"percentages": out})
}

// setMaxSpend updates the budget's spending limit.
func (h *budgetHandler) setMaxSpend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.SetMaxSpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.budgetService.SetMaxSpend(c.Request.Context(), c.Param("id"), req.MaxSpend, userID); err != nil {
		respondError(c, logger, err, "Failed to update max spend")
		return
	}
	c.Status(http.StatusNoContent)
}

// addItem adds an item to the budget. An item with the same name is
// replaced.
func (h *budgetHandler) addItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	itemID, err := h.budgetService.AddItem(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to add item")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"itemID": itemID})
}

// changeQuantity updates an item's quantity wherever the item lives.
func (h *budgetHandler) changeQuantity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.ChangeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.budgetService.ChangeItemQuantity(c.Request.Context(), c.Param("id"), req.Quantity, userID); err != nil {
		respondError(c, logger, err, "Failed to change quantity")
		return
	}
	c.Status(http.StatusNoContent)
}

// removeItem deletes an item wherever it lives.
func (h *budgetHandler) removeItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.budgetService.RemoveItem(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, logger, err, "Failed to remove item")
		return
	}
	c.Status(http.StatusNoContent)
}
