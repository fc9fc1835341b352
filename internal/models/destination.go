package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Destination struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name        string     `gorm:"size:100;not null;uniqueIndex:idx_destinations_name_city_country" json:"name"`
	Description string     `json:"description"`
	Country     string     `gorm:"size:100;not null;uniqueIndex:idx_destinations_name_city_country" json:"country"`
	City        string     `gorm:"size:100;uniqueIndex:idx_destinations_name_city_country" json:"city"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	ImageURL    string     `json:"image_url"`
	IsPopular   bool       `gorm:"not null;default:false" json:"is_popular"`
	UserID      *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	Owner       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"owner,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (destination *Destination) BeforeCreate(tx *gorm.DB) (err error) {
	if destination.ID == uuid.Nil {
		destination.ID = uuid.New()
	}
	return
}
