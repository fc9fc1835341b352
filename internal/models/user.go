package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TravelStyles are the accepted values for a user's preferred travel style.
var TravelStyles = []string{
	"ADVENTURE",
	"RELAXATION",
	"CULTURAL",
	"LUXURY",
	"FAMILY",
	"CRUISE",
	"ECOTOURISM",
	"BUSINESS",
}

func IsValidTravelStyle(style string) bool {
	for _, s := range TravelStyles {
		if s == style {
			return true
		}
	}
	return false
}

type User struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Username             string     `gorm:"size:150;unique;not null" json:"username"`
	Email                string     `gorm:"size:254;not null" json:"email"`
	Password             string     `gorm:"not null" json:"-"`
	DateOfBirth          *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	City                 string     `gorm:"size:100" json:"city"`
	ZipCode              string     `gorm:"size:10" json:"zip_code"`
	PreferredTravelStyle string     `gorm:"size:150" json:"preferred_travel_style"`
	IsStaff              bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser          bool       `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}
