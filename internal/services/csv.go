package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pc-inventory/internal/models"
)

var exportColumns = []string{
	"computer_name",
	"ip_address",
	"location_address",
	"floor",
	"office",
	"domain",
	"pc_owner",
	"pc_owner_position_at_work",
	"has_kaspersky",
	"operating_system",
	"comment",
}

var requiredImportColumns = []string{"computer_name", "ip_address", "location_address", "floor", "office"}

// RowError describes one rejected import row. Row numbers start at 1 with
// the first data row.
type RowError struct {
	Row     int    `json:"row"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ImportedComputer is the summary of an imported row kept in the audit trail.
type ImportedComputer struct {
	ComputerName string `json:"computer_name"`
	IPAddress    string `json:"ip_address"`
	Location     string `json:"location"`
	OS           string `json:"os"`
	Kaspersky    string `json:"kaspersky"`
	OwnerName    string `json:"pc_owner"`
	Position     string `json:"position"`
}

type ImportResult struct {
	ImportedCount int                `json:"imported_count"`
	TotalRows     int                `json:"total_rows"`
	Errors        []RowError         `json:"errors"`
	Imported      []ImportedComputer `json:"-"`
	Change        *models.Change     `json:"-"`
}

func (r *ImportResult) Message() string {
	return fmt.Sprintf("Imported %d of %d rows", r.ImportedCount, r.TotalRows)
}

// ImportCSV creates one computer per data row. Rows fail independently and
// the batch is never aborted by a bad row. When at least one row was
// imported a single change record summarises the batch.
func (s *ComputerService) ImportCSV(ctx context.Context, r io.Reader, actor *models.User) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, validationErrorf("CSV file is empty")
		}
		return nil, validationErrorf("failed to read CSV header: %v", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	for _, name := range requiredImportColumns {
		if _, ok := columns[name]; !ok {
			return nil, validationErrorf("CSV header is missing column %q", name)
		}
	}

	result := &ImportResult{Errors: []RowError{}, Imported: []ImportedComputer{}}

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A parse error belongs to one row. Any other error means the
			// upload itself cannot be read.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, validationErrorf("failed to read CSV: %v", err)
			}
			result.TotalRows++
			result.Errors = append(result.Errors, rowError(row, validationErrorf("malformed CSV row: %v", err)))
			continue
		}
		result.TotalRows++

		field := func(name string) string {
			if i, ok := columns[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		computer, err := s.importRow(field)
		if err != nil {
			result.Errors = append(result.Errors, rowError(row, err))
			continue
		}

		result.ImportedCount++
		result.Imported = append(result.Imported, s.summarize(computer))
	}

	if result.ImportedCount == 0 {
		return result, nil
	}

	change, err := s.changes.Record(ctx, ChangeEntry{
		Actor:        actor,
		ComputerName: fmt.Sprintf("CSV import (%d pcs)", result.ImportedCount),
		ComputerIP:   "N/A",
		Description: map[string]any{
			"action":             "csv_import",
			"imported_count":     result.ImportedCount,
			"total_rows":         result.TotalRows,
			"errors":             result.Errors,
			"imported_computers": result.Imported,
		},
	})
	result.Change = change
	return result, err
}

func (s *ComputerService) importRow(field func(string) string) (*models.Computer, error) {
	floor, err := strconv.ParseUint(field("floor"), 10, 32)
	if err != nil {
		return nil, validationErrorf("floor %q is not a non-negative integer", field("floor"))
	}

	computer := &models.Computer{
		ComputerName:    field("computer_name"),
		IPAddress:       field("ip_address"),
		LocationAddress: field("location_address"),
		Floor:           uint(floor),
		Office:          field("office"),
		Domain:          field("domain"),
		OwnerName:       field("pc_owner"),
		OwnerPosition:   field("pc_owner_position_at_work"),
		HasKaspersky:    s.parseYesNo(field("has_kaspersky")),
		OperatingSystem: field("operating_system"),
		Comment:         field("comment"),
	}
	if err := validateComputer(computer); err != nil {
		return nil, err
	}

	var count int64
	err = models.DB.Model(&models.Computer{}).
		Where("computer_name = ? AND ip_address = ?", computer.ComputerName, computer.IPAddress).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictErrorf("computer %s with IP %s already exists", computer.ComputerName, computer.IPAddress)
	}

	if err := models.DB.Create(computer).Error; err != nil {
		return nil, fmt.Errorf("failed to create computer: %w", err)
	}
	return computer, nil
}

func (s *ComputerService) parseYesNo(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", strings.ToLower(s.cfg.CSV.YesLabel):
		return true
	}
	return false
}

func (s *ComputerService) yesNo(v bool) string {
	if v {
		return s.cfg.CSV.YesLabel
	}
	return s.cfg.CSV.NoLabel
}

func (s *ComputerService) summarize(c *models.Computer) ImportedComputer {
	return ImportedComputer{
		ComputerName: c.ComputerName,
		IPAddress:    c.IPAddress,
		Location:     fmt.Sprintf("%s, office %s", c.LocationAddress, c.Office),
		OS:           c.OperatingSystem,
		Kaspersky:    s.yesNo(c.HasKaspersky),
		OwnerName:    c.OwnerName,
		Position:     c.OwnerPosition,
	}
}

func rowError(row int, err error) RowError {
	return RowError{Row: row, Kind: KindOf(err), Message: err.Error()}
}

// ExportCSV renders the computers matching filter. The document is complete
// before the export is recorded, so a failed notification never truncates
// it. Anonymous exports are not recorded.
func (s *ComputerService) ExportCSV(ctx context.Context, filter ComputerFilter, actor *models.User) ([]byte, int, error) {
	var computers []models.Computer
	if err := filter.apply(models.DB.Model(&models.Computer{})).Order(computerOrder).Find(&computers).Error; err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportColumns); err != nil {
		return nil, 0, err
	}
	for _, c := range computers {
		err := writer.Write([]string{
			c.ComputerName,
			c.IPAddress,
			c.LocationAddress,
			strconv.FormatUint(uint64(c.Floor), 10),
			c.Office,
			c.Domain,
			c.OwnerName,
			c.OwnerPosition,
			s.yesNo(c.HasKaspersky),
			c.OperatingSystem,
			c.Comment,
		})
		if err != nil {
			return nil, 0, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, 0, err
	}

	if actor == nil {
		return buf.Bytes(), len(computers), nil
	}

	_, err := s.changes.Record(ctx, ChangeEntry{
		Actor:        actor,
		ComputerName: "CSV export",
		ComputerIP:   "N/A",
		Description: map[string]any{
			"action":         "csv_export",
			"exported_count": len(computers),
		},
	})
	return buf.Bytes(), len(computers), err
}
