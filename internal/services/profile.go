package services

import (
	"errors"

	"pc-inventory/internal/models"

	"gorm.io/gorm"
)

// ProfileService reads and edits profiles. Profiles are created and removed
// only together with their user.
type ProfileService struct{}

func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// List returns every profile for a superuser and the actor's own otherwise.
func (s *ProfileService) List(actor *models.User) ([]models.Profile, error) {
	query := models.DB.Preload("User").Order("id")
	if !actor.IsSuperuser {
		query = query.Where("user_id = ?", actor.ID)
	}

	var profiles []models.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Get returns a profile visible to actor; others are reported missing.
func (s *ProfileService) Get(actor *models.User, id uint) (*models.Profile, error) {
	profile, err := s.find(models.DB.Where("id = ?", id))
	if err != nil {
		return nil, err
	}
	if !CanSee(actor, profile.UserID) {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// ForUser returns the profile owned by userID.
func (s *ProfileService) ForUser(userID uint) (*models.Profile, error) {
	return s.find(models.DB.Where("user_id = ?", userID))
}

func (s *ProfileService) find(query *gorm.DB) (*models.Profile, error) {
	var profile models.Profile
	if err := query.Preload("User").First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

type ProfileUpdate struct {
	Role       *models.Role `json:"role"`
	Position   *string      `json:"position"`
	Department *string      `json:"department"`
}

// Update edits a profile on behalf of actor. The owner or a superuser may
// edit it; the role additionally needs an admin or a superuser.
func (s *ProfileService) Update(actor *models.User, id uint, in ProfileUpdate) (*models.Profile, error) {
	profile, err := s.find(models.DB.Where("id = ?", id))
	if err != nil {
		return nil, err
	}

	if !CanEditProfile(actor, profile) {
		return nil, wrapErr(ErrForbidden, "you can only edit your own profile")
	}

	if in.Role != nil && *in.Role != profile.Role {
		if !CanChangeRole(actor) {
			return nil, wrapErr(ErrForbidden, "only an admin can change roles")
		}
		if !in.Role.Valid() {
			return nil, validationErrorf("invalid role: %s", *in.Role)
		}
		profile.Role = *in.Role
	}
	setString(&profile.Position, in.Position)
	setString(&profile.Department, in.Department)

	if err := models.DB.Omit("User").Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
