package services

import (
	"errors"
	"strings"

	"pc-inventory/internal/config"
	"pc-inventory/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	authService *AuthService
	changes     *ChangeService
}

func NewUserService(cfg *config.Config, changes *ChangeService) *UserService {
	return &UserService{
		authService: NewAuthService(cfg),
		changes:     changes,
	}
}

// GetUsers returns the users visible to actor: everyone for a superuser,
// only the actor otherwise.
func (s *UserService) GetUsers(actor *models.User) ([]models.User, error) {
	query := models.DB.Preload("Profile").Order("id")
	if !actor.IsSuperuser {
		query = query.Where("id = ?", actor.ID)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a user visible to actor. Users outside the actor's scope
// are reported as missing.
func (s *UserService) GetUser(actor *models.User, id uint) (*models.User, error) {
	if !CanSee(actor, id) {
		return nil, ErrUserNotFound
	}
	return s.findUser(id)
}

func (s *UserService) findUser(id uint) (*models.User, error) {
	var user models.User
	if err := models.DB.Preload("Profile").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser provisions an identity with its profile and first token.
func (s *UserService) CreateUser(in NewUser) (*models.User, *models.Token, error) {
	return s.authService.CreateUser(in)
}

// UserUpdate holds the user fields a request may change. Nil means keep.
type UserUpdate struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UpdateUser applies in to the user id on behalf of actor. Users may edit
// themselves; only superusers may edit others or touch the status flags.
func (s *UserService) UpdateUser(actor *models.User, id uint, in UserUpdate) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	if !CanEditUser(actor, user) {
		return nil, wrapErr(ErrForbidden, "you can only edit your own account")
	}
	if (in.IsSuperuser != nil || in.IsActive != nil) && !actor.IsSuperuser {
		return nil, wrapErr(ErrForbidden, "only a superuser can change account status")
	}

	// Check if username is taken by another user
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, validationErrorf("username cannot be empty")
		}
		if username != user.Username {
			var count int64
			if err := models.DB.Model(&models.User{}).Where("username = ? AND id != ?", username, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrUserExists
			}
		}
		user.Username = username
	}

	setString(&user.Email, in.Email)
	setString(&user.FirstName, in.FirstName)
	setString(&user.LastName, in.LastName)
	demoted := user.IsSuperuser && user.IsActive &&
		((in.IsSuperuser != nil && !*in.IsSuperuser) || (in.IsActive != nil && !*in.IsActive))
	if demoted {
		others, err := otherActiveSuperusers(models.DB, user.ID)
		if err != nil {
			return nil, err
		}
		if others == 0 {
			return nil, ErrLastSuperuser
		}
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		user.IsSuperuser = *in.IsSuperuser
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, validationErrorf("password cannot be empty")
		}
		hashedPassword, err := s.authService.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}

	if err := models.DB.Omit("Profile").Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user with its profile and tokens. Change records
// written by the user stay, detached from the account.
func (s *UserService) DeleteUser(id uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// Don't allow deleting the last superuser
		if user.IsSuperuser && user.IsActive {
			others, err := otherActiveSuperusers(tx, user.ID)
			if err != nil {
				return err
			}
			if others == 0 {
				return ErrLastSuperuser
			}
		}

		if err := s.changes.OnUserDeleted(tx, user.ID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// otherActiveSuperusers counts the active superusers besides id.
func otherActiveSuperusers(db *gorm.DB, id uint) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("is_superuser = ? AND is_active = ? AND id != ?", true, true, id).
		Count(&count).Error
	return count, err
}
