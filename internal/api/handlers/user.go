package handlers

import (
	"pc-inventory/internal/api/middleware"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers returns the users visible to the caller
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers(middleware.CurrentUser(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"users": users})
}

// GetMe returns the current user
func (h *UserHandler) GetMe(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	user, err := h.userService.GetUser(actor, actor.ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, user)
}

// GetUser returns a specific user
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(middleware.CurrentUser(c), id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, user)
}

// CreateUser creates a user together with its profile and token
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	user, token, err := h.userService.CreateUser(req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(201, gin.H{"user": user, "token": token.Key, "expires_at": token.ExpiresAt})
}

// UpdateUser updates user information, password included
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	var req services.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(middleware.CurrentUser(c), id, req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, user)
}

// DeleteUser deletes a user
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "User deleted successfully"})
}
