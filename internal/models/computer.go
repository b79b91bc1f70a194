package models

import (
	"time"

	"gorm.io/datatypes"
)

// Computer is a tracked workstation. Owner fields are free text and do not
// reference a User.
type Computer struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ComputerName    string    `json:"computer_name" gorm:"type:varchar(100);not null;index"`
	OwnerName       string    `json:"pc_owner" gorm:"column:pc_owner;type:varchar(100)"`
	OwnerPosition   string    `json:"pc_owner_position_at_work" gorm:"column:pc_owner_position_at_work;type:varchar(100)"`
	IPAddress       string    `json:"ip_address" gorm:"type:varchar(15);not null;index"`
	Domain          string    `json:"domain" gorm:"type:varchar(100)"`
	OperatingSystem string    `json:"operating_system" gorm:"type:varchar(60)"`
	HasKaspersky    bool      `json:"has_kaspersky" gorm:"default:false"`
	LocationAddress string    `json:"location_address" gorm:"type:varchar(255);not null"`
	Floor           uint      `json:"floor" gorm:"not null"`
	Office          string    `json:"office" gorm:"type:varchar(50);not null"`
	Comment         string    `json:"comment" gorm:"type:varchar(255)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Change is an audit trail entry. ComputerName and ComputerIP are copied from
// the computer when the entry is written and never change afterwards; the
// computer and user references are cleared when their rows are deleted.
type Change struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	ComputerID        *uint          `json:"computer_id" gorm:"index"`
	Computer          *Computer      `json:"computer,omitempty" gorm:"foreignKey:ComputerID;constraint:OnDelete:SET NULL"`
	ComputerName      string         `json:"computer_name" gorm:"type:varchar(100)"`
	ComputerIP        string         `json:"computer_ip" gorm:"type:varchar(15)"`
	UserID            *uint          `json:"user_id" gorm:"index"`
	User              *User          `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	ChangeDescription datatypes.JSON `json:"change_description"`
	ChangeDate        time.Time      `json:"change_date" gorm:"not null;index"`
}

// DisplayComputer is the computer label used in notifications.
func (c *Change) DisplayComputer() string {
	if c.ComputerName == "" {
		return "Deleted computer"
	}
	return c.ComputerName
}

func (c *Change) DisplayIP() string {
	if c.ComputerIP == "" {
		return "Not specified"
	}
	return c.ComputerIP
}

func (c *Change) DisplayUser() string {
	if c.User == nil {
		return "Not specified"
	}
	return c.User.Username
}
