// Package policy holds the per-entity authorization decisions. Every function
// takes the caller identity explicitly (nil means anonymous) so the rules can
// be tested without any HTTP plumbing.
package policy

import (
	"github.com/google/uuid"

	"github.com/arintala/wanderplan/internal/models"
)

type Operation int

const (
	Retrieve Operation = iota
	Update
	Delete
)

// IsAdmin reports whether the caller bypasses ownership checks.
func IsAdmin(caller *models.User) bool {
	return caller != nil && caller.IsStaff
}

func ownsID(caller *models.User, ownerID *uuid.UUID) bool {
	return caller != nil && ownerID != nil && *ownerID == caller.ID
}

// CanAccessUser: a user may act on their own account; admins on anyone.
func CanAccessUser(caller *models.User, target *models.User, op Operation) bool {
	if caller == nil {
		return false
	}
	if IsAdmin(caller) {
		return true
	}
	return caller.ID == target.ID
}

// CanAccessDestination: reads are open; writes need the owner or an admin.
func CanAccessDestination(caller *models.User, destination *models.Destination, op Operation) bool {
	if op == Retrieve {
		return true
	}
	return IsAdmin(caller) || ownsID(caller, destination.UserID)
}

// CanAccessTravelPlan: public plans are readable by anyone, private plans only
// by their owner or an admin; writes need the owner or an admin.
func CanAccessTravelPlan(caller *models.User, plan *models.TravelPlan, op Operation) bool {
	if op == Retrieve && plan.IsPublic {
		return true
	}
	return IsAdmin(caller) || ownsID(caller, plan.UserID)
}

// CanAccessPlanChild covers itinerary entries and activities, whose effective
// owner is the owner of the parent travel plan. A nil planOwnerID (parent plan
// deleted) leaves only admins.
func CanAccessPlanChild(caller *models.User, planOwnerID *uuid.UUID, op Operation) bool {
	return IsAdmin(caller) || ownsID(caller, planOwnerID)
}

// CanAccessComment: reads are open; writes need the author or an admin.
func CanAccessComment(caller *models.User, comment *models.Comment, op Operation) bool {
	if op == Retrieve {
		return true
	}
	if IsAdmin(caller) {
		return true
	}
	return caller != nil && caller.ID == comment.UserID
}
