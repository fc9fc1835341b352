package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment targets exactly one destination or travel plan, stored as a
// (target_type, target_id) pair restricted to the two variants below.
const (
	TargetDestination = "destination"
	TargetTravelPlan  = "travelplan"
)

const CommentMaxLength = 1000

type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Author     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Text       string    `gorm:"not null" json:"text"`
	TargetType string    `gorm:"size:20;not null;index:idx_comments_target" json:"target_type"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_target" json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (comment *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return
}

// ResolveTarget reports whether a comment target points at an existing row.
// Only the destination and travelplan variants are resolvable.
func ResolveTarget(db *gorm.DB, targetType string, targetID uuid.UUID) (bool, error) {
	var count int64
	switch targetType {
	case TargetDestination:
		if err := db.Model(&Destination{}).Where("id = ?", targetID).Count(&count).Error; err != nil {
			return false, err
		}
	case TargetTravelPlan:
		if err := db.Model(&TravelPlan{}).Where("id = ?", targetID).Count(&count).Error; err != nil {
			return false, err
		}
	default:
		return false, errors.New("unknown target type")
	}
	return count > 0, nil
}
