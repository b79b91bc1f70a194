package handlers

import (
	"net/http"

	"pc-inventory/internal/api/middleware"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	profiles, err := h.profileService.List(middleware.CurrentUser(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"profiles": profiles})
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	profile, err := h.profileService.ForUser(middleware.CurrentUser(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, profile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := parseID(c, "profile")
	if !ok {
		return
	}

	profile, err := h.profileService.Get(middleware.CurrentUser(c), id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseID(c, "profile")
	if !ok {
		return
	}

	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	profile, err := h.profileService.Update(middleware.CurrentUser(c), id, req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, profile)
}

// MethodNotAllowed answers profile creation and deletion. Profiles exist
// exactly as long as their user.
func (h *ProfileHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"error": "Profiles are created and deleted together with their user",
		"kind":  "method_not_allowed",
	})
}
