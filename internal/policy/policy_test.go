package policy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/arintala/wanderplan/internal/models"
)

func testUser(admin bool) *models.User {
	return &models.User{ID: uuid.New(), IsStaff: admin}
}

func TestCanAccessTravelPlan(t *testing.T) {
	owner := testUser(false)
	stranger := testUser(false)
	admin := testUser(true)

	private := &models.TravelPlan{UserID: &owner.ID, IsPublic: false}
	public := &models.TravelPlan{UserID: &owner.ID, IsPublic: true}

	cases := []struct {
		name   string
		caller *models.User
		plan   *models.TravelPlan
		op     Operation
		want   bool
	}{
		{"anonymous reads public", nil, public, Retrieve, true},
		{"anonymous reads private", nil, private, Retrieve, false},
		{"stranger reads private", stranger, private, Retrieve, false},
		{"owner reads private", owner, private, Retrieve, true},
		{"admin reads private", admin, private, Retrieve, true},
		{"stranger updates public", stranger, public, Update, false},
		{"owner updates public", owner, public, Update, true},
		{"admin deletes private", admin, private, Delete, true},
		{"anonymous deletes public", nil, public, Delete, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAccessTravelPlan(tc.caller, tc.plan, tc.op); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanAccessDestination(t *testing.T) {
	owner := testUser(false)
	stranger := testUser(false)
	admin := testUser(true)

	owned := &models.Destination{UserID: &owner.ID}
	orphan := &models.Destination{}

	if !CanAccessDestination(nil, owned, Retrieve) {
		t.Error("reads should be open to anonymous callers")
	}
	if CanAccessDestination(stranger, owned, Update) {
		t.Error("stranger should not update")
	}
	if !CanAccessDestination(owner, owned, Update) {
		t.Error("owner should update")
	}
	if !CanAccessDestination(admin, orphan, Delete) {
		t.Error("admin should delete an ownerless destination")
	}
	if CanAccessDestination(owner, orphan, Delete) {
		t.Error("an ownerless destination is admin-only for writes")
	}
}

func TestCanAccessPlanChild(t *testing.T) {
	owner := testUser(false)
	stranger := testUser(false)
	admin := testUser(true)

	if !CanAccessPlanChild(owner, &owner.ID, Update) {
		t.Error("plan owner should act on the child")
	}
	if CanAccessPlanChild(stranger, &owner.ID, Retrieve) {
		t.Error("child access should follow the parent plan's owner")
	}
	if !CanAccessPlanChild(admin, nil, Delete) {
		t.Error("admin should act even when the parent plan is gone")
	}
	if CanAccessPlanChild(owner, nil, Retrieve) {
		t.Error("nil plan owner should leave only admins")
	}
}

func TestCanAccessComment(t *testing.T) {
	author := testUser(false)
	stranger := testUser(false)
	admin := testUser(true)

	comment := &models.Comment{UserID: author.ID}

	if !CanAccessComment(nil, comment, Retrieve) {
		t.Error("comment reads should be open")
	}
	if CanAccessComment(stranger, comment, Update) {
		t.Error("non-author should not update")
	}
	if !CanAccessComment(author, comment, Delete) {
		t.Error("author should delete")
	}
	if !CanAccessComment(admin, comment, Delete) {
		t.Error("admin should delete")
	}
}

func TestCanAccessUser(t *testing.T) {
	self := testUser(false)
	other := testUser(false)
	admin := testUser(true)

	if CanAccessUser(nil, self, Retrieve) {
		t.Error("anonymous should never access a profile")
	}
	if !CanAccessUser(self, self, Update) {
		t.Error("user should act on own account")
	}
	if CanAccessUser(other, self, Retrieve) {
		t.Error("user should not read a foreign profile")
	}
	if !CanAccessUser(admin, self, Delete) {
		t.Error("admin should act on anyone")
	}
}
