package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getProfile)
		users.GET("/me/expenses", h.listExpenses)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}
}

// getProfile returns the logged-in user's rendered profile.
func (h *userHandler) getProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// listExpenses returns the logged-in user's expenses in creation order.
func (h *userHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	expenses, err := h.userService.GetExpenses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpenseResponse(expenses))
}

// getUser returns a user's public details. Users may only read their own
// record.
func (h *userHandler) getUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	targetID := c.Param("id")
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	if userID != targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateUser updates the user's name and/or email. Own record only.
func (h *userHandler) updateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	targetID := c.Param("id")
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	if userID != targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), targetID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// deleteUser removes the account. Own record only; the service enforces it
// as well.
func (h *userHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	targetID := c.Param("id")
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), targetID, userID); err != nil {
		respondError(c, logger, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
