package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role identifies the access level of a user.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// SubscriptionType distinguishes restaurants with live temperature sensors
// from those logging temperatures manually.
type SubscriptionType string

const (
	SubscriptionSensor SubscriptionType = "sensor"
	SubscriptionManual SubscriptionType = "manual"
)

// User represents an authenticated user of the compliance client.
// Role and SubscriptionType are assigned at directory lookup and never
// mutated afterwards; superadmin users carry no restaurant association.
type User struct {
	ID               uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	Email            string           `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name             string           `json:"name" gorm:"size:255;not null"`
	PasswordHash     string           `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role             Role             `json:"role" gorm:"size:50;not null;index"`
	RestaurantID     uuid.UUID        `json:"restaurant_id,omitempty" gorm:"type:char(36);index"`
	RestaurantName   string           `json:"restaurant_name,omitempty" gorm:"size:255"`
	SubscriptionType SubscriptionType `json:"subscription_type,omitempty" gorm:"size:50"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Sanitized returns a copy of the user with the password hash cleared.
// Only sanitized users may be held in a session or written to storage.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}
