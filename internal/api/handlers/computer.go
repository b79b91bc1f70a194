package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pc-inventory/internal/api/middleware"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

type ComputerHandler struct {
	computerService *services.ComputerService
}

func NewComputerHandler(computerService *services.ComputerService) *ComputerHandler {
	return &ComputerHandler{computerService: computerService}
}

func computerFilter(c *gin.Context) (services.ComputerFilter, bool) {
	filter := services.ComputerFilter{
		ComputerName:    c.Query("computer_name"),
		IPAddress:       c.Query("ip_address"),
		LocationAddress: c.Query("location_address"),
		Office:          c.Query("office"),
		OperatingSystem: c.Query("operating_system"),
		Domain:          c.Query("domain"),
		OwnerName:       c.Query("pc_owner"),
	}

	var ok bool
	if filter.Floor, ok = queryUint(c, "floor"); !ok {
		return filter, false
	}
	if filter.HasKaspersky, ok = queryBool(c, "has_kaspersky"); !ok {
		return filter, false
	}
	return filter, true
}

// GetComputers returns the computers matching the query filters
func (h *ComputerHandler) GetComputers(c *gin.Context) {
	filter, ok := computerFilter(c)
	if !ok {
		return
	}

	result, err := h.computerService.List(filter, parsePage(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"computers":   result.Data,
		"total":       result.Total,
		"page":        result.Page,
		"limit":       result.Limit,
		"total_pages": result.TotalPages,
	})
}

func (h *ComputerHandler) GetComputer(c *gin.Context) {
	id, ok := parseID(c, "computer")
	if !ok {
		return
	}

	computer, err := h.computerService.Get(id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, computer)
}

func (h *ComputerHandler) CreateComputer(c *gin.Context) {
	var req services.ComputerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	computer, err := h.computerService.Create(req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(201, computer)
}

// UpdateComputer handles PUT (full) and PATCH (partial) updates
func (h *ComputerHandler) UpdateComputer(c *gin.Context) {
	id, ok := parseID(c, "computer")
	if !ok {
		return
	}

	var req services.ComputerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	computer, err := h.computerService.Update(id, req, c.Request.Method == http.MethodPatch)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, computer)
}

func (h *ComputerHandler) DeleteComputer(c *gin.Context) {
	id, ok := parseID(c, "computer")
	if !ok {
		return
	}

	if err := h.computerService.Delete(id); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Computer deleted successfully"})
}

// GetComputerChanges lists the change records of one computer
func (h *ComputerHandler) GetComputerChanges(c *gin.Context) {
	id, ok := parseID(c, "computer")
	if !ok {
		return
	}

	changes, err := h.computerService.Changes(id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(200, gin.H{"changes": changes})
}

type LogChangeRequest struct {
	ChangeDescription json.RawMessage `json:"change_description"`
}

// description accepts either a JSON value or a string holding encoded JSON.
func (r LogChangeRequest) description() (json.RawMessage, error) {
	if len(r.ChangeDescription) == 0 || string(r.ChangeDescription) == "null" {
		return nil, errors.New("change_description is required")
	}

	var encoded string
	if err := json.Unmarshal(r.ChangeDescription, &encoded); err != nil {
		return r.ChangeDescription, nil
	}
	if !json.Valid([]byte(encoded)) {
		return nil, errors.New("change_description string must contain valid JSON")
	}
	return json.RawMessage(encoded), nil
}

// LogChange records a manual change against a computer
func (h *ComputerHandler) LogChange(c *gin.Context) {
	id, ok := parseID(c, "computer")
	if !ok {
		return
	}

	var req LogChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}
	description, err := req.description()
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error(), "kind": services.KindValidation})
		return
	}

	change, err := h.computerService.LogChange(c.Request.Context(), id, middleware.CurrentUser(c), description)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(201, gin.H{"status": "change logged", "change": change})
}

// ExportCSV streams the filtered computers as a CSV attachment
func (h *ComputerHandler) ExportCSV(c *gin.Context) {
	filter, ok := computerFilter(c)
	if !ok {
		return
	}

	data, _, err := h.computerService.ExportCSV(c.Request.Context(), filter, middleware.CurrentUser(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="computers_export.csv"`)
	c.Data(200, "text/csv; charset=utf-8", data)
}

// ImportCSV imports computers from the uploaded "file" field
func (h *ComputerHandler) ImportCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(400, gin.H{"error": "No file provided", "kind": services.KindValidation})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(400, gin.H{"error": "Failed to read uploaded file", "kind": services.KindValidation})
		return
	}
	defer file.Close()

	result, err := h.computerService.ImportCSV(c.Request.Context(), file, middleware.CurrentUser(c))
	if result == nil {
		middleware.RespondError(c, err)
		return
	}

	body := gin.H{
		"imported_count": result.ImportedCount,
		"total_rows":     result.TotalRows,
		"errors":         result.Errors,
		"message":        result.Message(),
	}
	if err != nil {
		_ = c.Error(err)
		body["error"] = err.Error()
		body["kind"] = services.KindOf(err)
		c.JSON(middleware.StatusFor(err), body)
		return
	}

	c.JSON(200, body)
}
