package models

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
	RoleAuditor  Role = "auditor"
)

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleAuditor:
		return true
	}
	return false
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email" gorm:"type:varchar(254)"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(150)"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Profile      *Profile  `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Role returns the profile role, or employee when the profile was not loaded.
func (u *User) Role() Role {
	if u == nil || u.Profile == nil {
		return RoleEmployee
	}
	return u.Profile.Role
}

// Profile holds the role and position metadata attached 1:1 to a User.
type Profile struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User             *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role             Role      `json:"role" gorm:"type:varchar(20);default:'employee';not null"`
	Position         string    `json:"position" gorm:"type:varchar(100)"`
	Department       string    `json:"department" gorm:"type:varchar(100)"`
	RegistrationDate time.Time `json:"registration_date" gorm:"autoCreateTime"`
}

// Token is a bearer credential. user_id is unique: one live token per user.
type Token struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"type:varchar(500);uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// Expired reports whether the token is no longer valid at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
