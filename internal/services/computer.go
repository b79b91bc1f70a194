package services

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"pc-inventory/internal/config"
	"pc-inventory/internal/models"

	"gorm.io/gorm"
)

type ComputerService struct {
	cfg     *config.Config
	changes *ChangeService
}

func NewComputerService(cfg *config.Config, changes *ChangeService) *ComputerService {
	return &ComputerService{cfg: cfg, changes: changes}
}

// ComputerInput carries the writable fields of a computer. Nil fields are
// left untouched by a partial update.
type ComputerInput struct {
	ComputerName    *string `json:"computer_name"`
	OwnerName       *string `json:"pc_owner"`
	OwnerPosition   *string `json:"pc_owner_position_at_work"`
	IPAddress       *string `json:"ip_address"`
	Domain          *string `json:"domain"`
	OperatingSystem *string `json:"operating_system"`
	HasKaspersky    *bool   `json:"has_kaspersky"`
	LocationAddress *string `json:"location_address"`
	Floor           *int    `json:"floor"`
	Office          *string `json:"office"`
	Comment         *string `json:"comment"`
}

func (in ComputerInput) applyTo(c *models.Computer) error {
	if in.Floor != nil {
		if *in.Floor < 0 {
			return validationErrorf("floor must be a non-negative integer")
		}
		c.Floor = uint(*in.Floor)
	}
	setString(&c.ComputerName, in.ComputerName)
	setString(&c.OwnerName, in.OwnerName)
	setString(&c.OwnerPosition, in.OwnerPosition)
	setString(&c.IPAddress, in.IPAddress)
	setString(&c.Domain, in.Domain)
	setString(&c.OperatingSystem, in.OperatingSystem)
	setString(&c.LocationAddress, in.LocationAddress)
	setString(&c.Office, in.Office)
	setString(&c.Comment, in.Comment)
	if in.HasKaspersky != nil {
		c.HasKaspersky = *in.HasKaspersky
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// validateComputer checks the fields the database cannot.
func validateComputer(c *models.Computer) error {
	if c.ComputerName == "" {
		return validationErrorf("computer_name is required")
	}
	if c.IPAddress == "" {
		return validationErrorf("ip_address is required")
	}
	if addr, err := netip.ParseAddr(c.IPAddress); err != nil || !addr.Is4() {
		return validationErrorf("ip_address %q is not a valid IPv4 address", c.IPAddress)
	}
	if c.LocationAddress == "" {
		return validationErrorf("location_address is required")
	}
	if c.Office == "" {
		return validationErrorf("office is required")
	}
	if len(c.ComputerName) > 100 {
		return validationErrorf("computer_name must be at most 100 characters")
	}
	return nil
}

// Create adds a computer. Plain creation is not written to the audit trail.
func (s *ComputerService) Create(in ComputerInput) (*models.Computer, error) {
	computer := &models.Computer{}
	if err := in.applyTo(computer); err != nil {
		return nil, err
	}
	if err := validateComputer(computer); err != nil {
		return nil, err
	}

	if err := models.DB.Create(computer).Error; err != nil {
		return nil, fmt.Errorf("failed to create computer: %w", err)
	}
	return computer, nil
}

func (s *ComputerService) Get(id uint) (*models.Computer, error) {
	var computer models.Computer
	if err := models.DB.First(&computer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComputerNotFound
		}
		return nil, err
	}
	return &computer, nil
}

// Update changes a computer. A full update resets every writable field
// first, so omitted fields fall back to their zero values and the required
// ones fail validation.
func (s *ComputerService) Update(id uint, in ComputerInput, partial bool) (*models.Computer, error) {
	computer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !partial {
		*computer = models.Computer{
			ID:        computer.ID,
			CreatedAt: computer.CreatedAt,
		}
	}
	if err := in.applyTo(computer); err != nil {
		return nil, err
	}
	if err := validateComputer(computer); err != nil {
		return nil, err
	}

	if err := models.DB.Save(computer).Error; err != nil {
		return nil, fmt.Errorf("failed to update computer: %w", err)
	}
	return computer, nil
}

// Delete removes a computer. Its change records are detached in the same
// transaction and keep their snapshots.
func (s *ComputerService) Delete(id uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		var computer models.Computer
		if err := tx.First(&computer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrComputerNotFound
			}
			return err
		}

		if err := s.changes.OnComputerDeleted(tx, computer.ID); err != nil {
			return fmt.Errorf("failed to detach change records: %w", err)
		}

		return tx.Delete(&computer).Error
	})
}

type ComputerFilter struct {
	ComputerName    string
	IPAddress       string
	LocationAddress string
	Office          string
	OperatingSystem string
	Domain          string
	OwnerName       string
	Floor           *uint
	HasKaspersky    *bool
}

func (f ComputerFilter) apply(query *gorm.DB) *gorm.DB {
	contains := []struct {
		column string
		value  string
	}{
		{"computer_name", f.ComputerName},
		{"ip_address", f.IPAddress},
		{"location_address", f.LocationAddress},
		{"office", f.Office},
		{"operating_system", f.OperatingSystem},
		{"domain", f.Domain},
		{"pc_owner", f.OwnerName},
	}
	for _, c := range contains {
		if c.value != "" {
			query = query.Where(containsFold(c.column, c.value))
		}
	}
	if f.Floor != nil {
		query = query.Where("floor = ?", *f.Floor)
	}
	if f.HasKaspersky != nil {
		query = query.Where("has_kaspersky = ?", *f.HasKaspersky)
	}
	return query
}

const computerOrder = "computer_name ASC, id ASC"

// List returns the computers matching filter ordered by name.
func (s *ComputerService) List(filter ComputerFilter, page Page) (*PaginatedResult[models.Computer], error) {
	query := filter.apply(models.DB.Model(&models.Computer{}))
	return paginate[models.Computer](query, computerOrder, page)
}

// LogChange records a manual change against an existing computer.
func (s *ComputerService) LogChange(ctx context.Context, id uint, actor *models.User, description any) (*models.Change, error) {
	computer, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.changes.Record(ctx, ChangeEntry{
		Computer:    computer,
		Actor:       actor,
		Description: description,
	})
}

// Changes lists the records still attached to a computer.
func (s *ComputerService) Changes(id uint) ([]models.Change, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.changes.ListForComputer(id)
}
