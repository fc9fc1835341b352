package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Activity struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Name          string       `gorm:"size:255;not null" json:"name"`
	Description   string       `json:"description"`
	TravelPlanID  *uuid.UUID   `gorm:"type:uuid" json:"travel_plan_id"`
	TravelPlan    *TravelPlan  `gorm:"foreignKey:TravelPlanID;constraint:OnDelete:SET NULL" json:"travel_plan,omitempty"`
	DestinationID *uuid.UUID   `gorm:"type:uuid" json:"destination_id"`
	Destination   *Destination `gorm:"foreignKey:DestinationID;constraint:OnDelete:SET NULL" json:"destination,omitempty"`
	Date          time.Time    `gorm:"not null" json:"date"`
	Cost          float64      `gorm:"not null" json:"cost"`
	Notes         string       `json:"notes"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (activity *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return
}
