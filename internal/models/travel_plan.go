package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TravelPlan struct {
	ID          uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	Name        string                  `gorm:"size:255;not null" json:"name"`
	UserID      *uuid.UUID              `gorm:"type:uuid" json:"user_id"`
	Owner       *User                   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"owner,omitempty"`
	StartDate   time.Time               `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time               `gorm:"type:date;not null" json:"end_date"`
	Description string                  `json:"description"`
	Budget      float64                 `gorm:"not null" json:"budget"`
	IsPublic    bool                    `gorm:"not null" json:"is_public"`
	Entries     []TravelPlanDestination `gorm:"foreignKey:TravelPlanID" json:"destinations_in_plan,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func (plan *TravelPlan) BeforeCreate(tx *gorm.DB) (err error) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	return
}
