package handlers

import (
	"pc-inventory/internal/api/middleware"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

type ChangeHandler struct {
	changeService *services.ChangeService
}

func NewChangeHandler(changeService *services.ChangeService) *ChangeHandler {
	return &ChangeHandler{changeService: changeService}
}

// GetChanges returns change records newest first
func (h *ChangeHandler) GetChanges(c *gin.Context) {
	filter := services.ChangeFilter{
		ComputerName: c.Query("computer_name"),
		Username:     c.Query("username"),
		Action:       c.Query("action"),
	}

	var ok bool
	if filter.DateFrom, ok = queryTime(c, "date_from", false); !ok {
		return
	}
	if filter.DateTo, ok = queryTime(c, "date_to", true); !ok {
		return
	}

	result, err := h.changeService.List(filter, parsePage(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"changes":     result.Data,
		"total":       result.Total,
		"page":        result.Page,
		"limit":       result.Limit,
		"total_pages": result.TotalPages,
	})
}

func (h *ChangeHandler) GetChange(c *gin.Context) {
	id, ok := parseID(c, "change")
	if !ok {
		return
	}

	change, err := h.changeService.Get(id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, change)
}

func (h *ChangeHandler) DeleteChange(c *gin.Context) {
	id, ok := parseID(c, "change")
	if !ok {
		return
	}

	if err := h.changeService.Delete(c.Request.Context(), id); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Change record deleted successfully"})
}
