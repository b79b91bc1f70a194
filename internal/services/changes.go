package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pc-inventory/internal/config"
	"pc-inventory/internal/metrics"
	"pc-inventory/internal/models"
	"pc-inventory/internal/notify"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const changeDateLayout = "2006-01-02 15:04:05 MST"

// ChangeService owns the audit trail. Every record it writes is followed by
// a synchronous notification.
type ChangeService struct {
	cfg      *config.Config
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewChangeService(cfg *config.Config, notifier notify.Notifier, logger *zap.Logger) *ChangeService {
	return &ChangeService{
		cfg:      cfg,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ChangeEntry is a change to record. When Computer is nil the snapshot
// fields are stored as given, which is how bulk operations describe
// themselves.
type ChangeEntry struct {
	Computer     *models.Computer
	Actor        *models.User
	Description  any
	ComputerName string
	ComputerIP   string
}

// Record persists entry and notifies about it. A notifier failure is
// returned wrapped in ErrNotifierFailure together with the stored record
// when propagation is enabled, and only logged otherwise.
func (s *ChangeService) Record(ctx context.Context, entry ChangeEntry) (*models.Change, error) {
	description, err := json.Marshal(entry.Description)
	if err != nil {
		return nil, validationErrorf("change_description is not valid JSON: %v", err)
	}

	change := &models.Change{
		ComputerName:      entry.ComputerName,
		ComputerIP:        entry.ComputerIP,
		ChangeDescription: datatypes.JSON(description),
		ChangeDate:        s.now().UTC(),
	}
	if entry.Computer != nil {
		change.ComputerID = &entry.Computer.ID
		change.ComputerName = entry.Computer.ComputerName
		change.ComputerIP = entry.Computer.IPAddress
	}
	if entry.Actor != nil {
		change.UserID = &entry.Actor.ID
	}

	if err := models.DB.WithContext(ctx).Omit(clause.Associations).Create(change).Error; err != nil {
		return nil, fmt.Errorf("failed to save change record: %w", err)
	}
	change.User = entry.Actor

	action := actionOf(change.ChangeDescription)
	metrics.ChangeRecords.WithLabelValues(action).Inc()
	s.logger.Info("change recorded",
		zap.Uint("change_id", change.ID),
		zap.String("action", action),
		zap.String("computer", change.DisplayComputer()),
		zap.String("user", change.DisplayUser()),
	)

	return change, s.notify(ctx, s.createdMessage(change))
}

// OnComputerDeleted detaches the records of a computer that is being
// deleted inside tx. Snapshots are kept.
func (s *ChangeService) OnComputerDeleted(tx *gorm.DB, computerID uint) error {
	return tx.Model(&models.Change{}).Where("computer_id = ?", computerID).Update("computer_id", nil).Error
}

// OnUserDeleted detaches the records authored by a user being deleted.
func (s *ChangeService) OnUserDeleted(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Change{}).Where("user_id = ?", userID).Update("user_id", nil).Error
}

func (s *ChangeService) Get(id uint) (*models.Change, error) {
	var change models.Change
	if err := models.DB.Preload("User").First(&change, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChangeNotFound
		}
		return nil, err
	}
	return &change, nil
}

// Delete removes a record and announces it. No record of the deletion is
// written.
func (s *ChangeService) Delete(ctx context.Context, id uint) error {
	change, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := models.DB.WithContext(ctx).Delete(&models.Change{}, change.ID).Error; err != nil {
		return fmt.Errorf("failed to delete change record: %w", err)
	}

	s.logger.Info("change deleted", zap.Uint("change_id", change.ID))
	return s.notify(ctx, s.deletedMessage(change))
}

type ChangeFilter struct {
	ComputerName string
	Username     string
	Action       string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// List returns change records newest first.
func (s *ChangeService) List(filter ChangeFilter, page Page) (*PaginatedResult[models.Change], error) {
	query := models.DB.Model(&models.Change{})

	if filter.ComputerName != "" {
		query = query.Where(containsFold("changes.computer_name", filter.ComputerName))
	}
	if filter.Username != "" {
		query = query.Joins("JOIN users ON users.id = changes.user_id").
			Where("users.username = ?", filter.Username)
	}
	if filter.Action != "" {
		query = query.Where(datatypes.JSONQuery("change_description").Equals(filter.Action, "action"))
	}
	// Dates are stored in UTC and SQLite compares them as text.
	if filter.DateFrom != nil {
		query = query.Where("changes.change_date >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		query = query.Where("changes.change_date <= ?", filter.DateTo.UTC())
	}

	return paginate[models.Change](query, "changes.change_date DESC, changes.id DESC", page, "User")
}

// ListForComputer returns the records still linked to a computer.
func (s *ChangeService) ListForComputer(computerID uint) ([]models.Change, error) {
	var changes []models.Change
	err := models.DB.Preload("User").
		Where("computer_id = ?", computerID).
		Order("change_date DESC, id DESC").
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *ChangeService) notify(ctx context.Context, msg notify.Message) error {
	err := s.notifier.Notify(ctx, msg)
	if err == nil {
		metrics.Notifications.WithLabelValues("sent").Inc()
		return nil
	}

	metrics.Notifications.WithLabelValues("failed").Inc()
	s.logger.Error("notification failed", zap.String("subject", msg.Subject), zap.Error(err))

	if s.cfg.Notification.PropagateErrors {
		return fmt.Errorf("%w: %v", ErrNotifierFailure, err)
	}
	return nil
}

func (s *ChangeService) createdMessage(c *models.Change) notify.Message {
	var b strings.Builder
	b.WriteString("Change record created:\n\n")
	fmt.Fprintf(&b, "ID: %d\n", c.ID)
	fmt.Fprintf(&b, "Computer: %s\n", c.DisplayComputer())
	fmt.Fprintf(&b, "IP: %s\n", c.DisplayIP())
	fmt.Fprintf(&b, "User: %s\n", c.DisplayUser())
	fmt.Fprintf(&b, "Description: %s\n", string(c.ChangeDescription))
	fmt.Fprintf(&b, "Change date: %s\n", c.ChangeDate.UTC().Format(changeDateLayout))

	return notify.Message{
		Subject: s.cfg.Notification.SubjectPrefix + ". Change record created",
		Body:    b.String(),
	}
}

func (s *ChangeService) deletedMessage(c *models.Change) notify.Message {
	var b strings.Builder
	b.WriteString("Change record deleted:\n\n")
	fmt.Fprintf(&b, "ID: %d\n", c.ID)
	fmt.Fprintf(&b, "Computer: %s\n", c.DisplayComputer())
	fmt.Fprintf(&b, "IP: %s\n", c.DisplayIP())
	fmt.Fprintf(&b, "User: %s\n", c.DisplayUser())
	fmt.Fprintf(&b, "Original change date: %s\n", c.ChangeDate.UTC().Format(changeDateLayout))

	return notify.Message{
		Subject: s.cfg.Notification.SubjectPrefix + ". Change record deleted",
		Body:    b.String(),
	}
}

// actionOf reads the "action" field of a description, falling back to
// "manual" for free-form descriptions.
func actionOf(description datatypes.JSON) string {
	var d struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(description, &d); err != nil || d.Action == "" {
		return "manual"
	}
	return d.Action
}

// containsFold builds a case-insensitive substring condition for column.
func containsFold(column, value string) clause.Expr {
	return gorm.Expr("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}
