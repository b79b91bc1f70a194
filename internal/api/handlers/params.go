package handlers

import (
	"strconv"
	"time"

	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + what + " ID", "kind": services.KindValidation})
		return 0, false
	}
	return uint(id), true
}

// parsePage reads page and limit. Absent parameters disable pagination;
// unparsable ones fall back to the defaults.
func parsePage(c *gin.Context) services.Page {
	var page services.Page
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if page.Page == 0 && page.Limit == 0 && (c.Query("page") != "" || c.Query("limit") != "") {
		page.Page = 1
	}
	return page
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name, "kind": services.KindValidation})
		return nil, false
	}
	return &v, true
}

func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name, "kind": services.KindValidation})
		return nil, false
	}
	u := uint(v)
	return &u, true
}

// queryTime accepts RFC 3339 timestamps and plain dates. A plain date used
// as an upper bound covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name + ", expected YYYY-MM-DD or RFC 3339", "kind": services.KindValidation})
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
