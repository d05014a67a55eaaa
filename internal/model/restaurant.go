package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant is the establishment a non-superadmin user belongs to.
type Restaurant struct {
	ID               uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	Name             string           `json:"name" gorm:"size:255;not null;index"`
	SubscriptionType SubscriptionType `json:"subscription_type" gorm:"size:50;not null"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// Relations
	Users []User `json:"users,omitempty" gorm:"foreignKey:RestaurantID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
