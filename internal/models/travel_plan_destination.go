package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TravelPlanDestination is one itinerary entry: a destination's stay inside a
// travel plan, sequenced by Order.
type TravelPlanDestination struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	TravelPlanID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_plan_destination" json:"travel_plan_id"`
	TravelPlan    *TravelPlan  `gorm:"foreignKey:TravelPlanID;constraint:OnDelete:CASCADE" json:"-"`
	DestinationID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_plan_destination" json:"destination_id"`
	Destination   *Destination `gorm:"foreignKey:DestinationID;constraint:OnDelete:CASCADE" json:"destination,omitempty"`
	Order         int          `gorm:"not null;default:0" json:"order"`
	ArrivalDate   time.Time    `gorm:"type:date;not null" json:"arrival_date"`
	DepartureDate time.Time    `gorm:"type:date;not null" json:"departure_date"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (entry *TravelPlanDestination) BeforeCreate(tx *gorm.DB) (err error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return
}
