package handlers

import (
	"time"

	"pc-inventory/internal/api/middleware"
	"pc-inventory/internal/models"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	UserID    uint         `json:"user_id"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, LoginResponse{
		Token:     token.Key,
		UserID:    user.ID,
		ExpiresAt: token.ExpiresAt,
		User:      user,
	})
}

// DeleteToken revokes the caller's tokens
func (h *AuthHandler) DeleteToken(c *gin.Context) {
	deleted, err := h.authService.Logout(middleware.CurrentUser(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Tokens deleted successfully", "deleted": deleted})
}
