package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
)

// groupHandler handles HTTP requests related to groups and the budgets they
// own.
type groupHandler struct {
	groupService  portssvc.GroupSvcFacade
	userService   portssvc.UserReaderSvc
	budgetService portssvc.BudgetSvcFacade
}

func newGroupHandler(gs portssvc.GroupSvcFacade, us portssvc.UserReaderSvc, bs portssvc.BudgetSvcFacade) *groupHandler {
	return &groupHandler{
		groupService:  gs,
		userService:   us,
		budgetService: bs,
	}
}

// registerGroupRoutes registers all group-related routes.
func registerGroupRoutes(rg *gin.RouterGroup, groupService portssvc.GroupSvcFacade, userService portssvc.UserReaderSvc, budgetService portssvc.BudgetSvcFacade) {
	h := newGroupHandler(groupService, userService, budgetService)

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listGroups)
		groups.GET("/:id", h.getGroup)
		groups.DELETE("/:id", h.deleteGroup)
		groups.POST("/:id/members", h.addMembers)
		groups.POST("/:id/budgets", h.createBudget)
		groups.GET("/:id/budgets", h.listBudgetNames)
		groups.DELETE("/:id/budgets/:budgetID", h.removeBudget)
		groups.POST("/:id/budgets/:budgetID/expenses", h.convertBudget)
	}
}

// createGroup creates a group with the caller as first member.
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create group")
		return
	}
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

// listGroups returns every group the caller belongs to.
func (h *groupHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve user")
		return
	}

	groups, err := h.groupService.ListGroupsForUser(c.Request.Context(), user.Email)
	if err != nil {
		respondError(c, logger, err, "Failed to list groups")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGroupResponse(groups))
}

// getGroup returns a single group. Members only.
func (h *groupHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	group, err := h.groupService.GetGroupByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve group")
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve user")
		return
	}
	if !group.HasMember(user.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// deleteGroup removes the group. Members only; the service enforces it.
func (h *groupHandler) deleteGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete group")
		return
	}
	c.Status(http.StatusNoContent)
}

// addMembers extends the group's member list.
func (h *groupHandler) addMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	group, err := h.groupService.AddMembers(c.Request.Context(), c.Param("id"), req.Emails, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to add members")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// createBudget creates a budget owned by the group.
func (h *groupHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create budget")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

// listBudgetNames returns the names of the group's budgets.
func (h *groupHandler) listBudgetNames(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	names, err := h.budgetService.GetBudgetNames(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to list budgets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"budgets": names})
}

// removeBudget detaches and deletes a budget. Removing a budget twice fails.
func (h *groupHandler) removeBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.budgetService.RemoveBudget(c.Request.Context(), c.Param("id"), c.Param("budgetID"), userID); err != nil {
		respondError(c, logger, err, "Failed to remove budget")
		return
	}
	c.Status(http.StatusNoContent)
}

// convertBudget turns every item in the budget into a personal expense and
// records the expenses on the group.
func (h *groupHandler) convertBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	groupID := c.Param("id")
	budgetID := c.Param("budgetID")
	if err := h.budgetService.AddExpensesToGroup(c.Request.Context(), groupID, budgetID, userID); err != nil {
		respondError(c, logger, err, "Failed to convert budget")
		return
	}

	logger.Info("Budget converted to expenses",
		slog.String("group_id", groupID),
		slog.String("budget_id", budgetID),
	)
	c.Status(http.StatusNoContent)
}
