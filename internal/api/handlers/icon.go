package handlers

import (
	"os"
	"path/filepath"

	"pc-inventory/internal/config"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

type IconHandler struct {
	dir string
}

func NewIconHandler(cfg *config.Config) *IconHandler {
	return &IconHandler{dir: filepath.Join(cfg.Paths.Static, "icons")}
}

// GetIcon serves a file from the icons directory
func (h *IconHandler) GetIcon(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == "/" || name == ".." {
		c.JSON(404, gin.H{"error": "Icon not found", "kind": services.KindNotFound})
		return
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(404, gin.H{"error": "Icon not found", "kind": services.KindNotFound})
		return
	}

	c.Header("Content-Type", "image/x-icon")
	c.File(path)
}
