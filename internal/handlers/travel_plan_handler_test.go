package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func planBody(overrides gin.H) gin.H {
	body := gin.H{
		"name":       "Winter in Rome",
		"start_date": "2025-01-01",
		"end_date":   "2025-01-10",
		"budget":     100.0,
		"is_public":  false,
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func TestTravelPlanValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "ada")

	w := doJSON(t, r, http.MethodPost, "/v1/travelplans", token, planBody(gin.H{"budget": 0}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero budget: expected 400, got %d", w.Code)
	}
	if _, ok := fieldErrors(t, w)["budget"]; !ok {
		t.Fatalf("expected budget field error, got %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/travelplans", token,
		planBody(gin.H{"start_date": "2025-02-01", "end_date": "2025-01-01"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inverted dates: expected 400, got %d", w.Code)
	}
	if _, ok := fieldErrors(t, w)["non_field_errors"]; !ok {
		t.Fatalf("expected non_field_errors for inverted dates, got %s", w.Body.String())
	}

	// Independent violations accumulate in one response.
	w = doJSON(t, r, http.MethodPost, "/v1/travelplans", token,
		planBody(gin.H{"budget": -5, "start_date": "2025-02-01", "end_date": "2025-01-01"}))
	errs := fieldErrors(t, w)
	if _, ok := errs["budget"]; !ok {
		t.Fatalf("expected accumulated budget error, got %s", w.Body.String())
	}
	if _, ok := errs["non_field_errors"]; !ok {
		t.Fatalf("expected accumulated non-field error, got %s", w.Body.String())
	}
}

func TestTravelPlanVisibility(t *testing.T) {
	r, db := newTestRouter(t)
	owner := registerAndLogin(t, r, "ada")
	other := registerAndLogin(t, r, "bob")
	registerUser(t, r, "root")
	makeAdmin(t, db, "root")
	admin := loginUser(t, r, "root")

	privateID := createPlan(t, r, owner, planBody(nil))
	createPlan(t, r, owner, planBody(gin.H{"name": "Open trip", "is_public": true}))

	// Anonymous listing sees public plans only.
	w := doJSON(t, r, http.MethodGet, "/v1/travelplans", "", nil)
	if total := decodeBody(t, w)["total"].(float64); total != 1 {
		t.Fatalf("anonymous list: expected 1 public plan, got %v", total)
	}

	// The owner sees both; another user sees only the public one.
	w = doJSON(t, r, http.MethodGet, "/v1/travelplans", owner, nil)
	if total := decodeBody(t, w)["total"].(float64); total != 2 {
		t.Fatalf("owner list: expected 2 plans, got %v", total)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/travelplans", other, nil)
	if total := decodeBody(t, w)["total"].(float64); total != 1 {
		t.Fatalf("other list: expected 1 plan, got %v", total)
	}

	// Private plan retrieval: owner and admin only.
	if w := doJSON(t, r, http.MethodGet, "/v1/travelplans/"+privateID, owner, nil); w.Code != http.StatusOK {
		t.Fatalf("owner GET private: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/travelplans/"+privateID, other, nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner GET private: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/travelplans/"+privateID, admin, nil); w.Code != http.StatusOK {
		t.Fatalf("admin GET private: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/travelplans/"+privateID, "", nil); w.Code != http.StatusForbidden {
		t.Fatalf("anonymous GET private: expected 403, got %d", w.Code)
	}
}

func TestTravelPlanUpdateAndDelete(t *testing.T) {
	r, _ := newTestRouter(t)
	owner := registerAndLogin(t, r, "ada")
	other := registerAndLogin(t, r, "bob")

	id := createPlan(t, r, owner, planBody(nil))

	if w := doJSON(t, r, http.MethodPatch, "/v1/travelplans/"+id, other, gin.H{"name": "hijack"}); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner PATCH: expected 403, got %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPatch, "/v1/travelplans/"+id, owner, gin.H{"budget": 250.0})
	if w.Code != http.StatusOK {
		t.Fatalf("owner PATCH: status %d body %s", w.Code, w.Body.String())
	}
	if budget := decodeBody(t, w)["budget"].(float64); budget != 250 {
		t.Fatalf("PATCH result: expected budget 250, got %v", budget)
	}

	// Patching only the end date still validates against the stored start.
	w = doJSON(t, r, http.MethodPatch, "/v1/travelplans/"+id, owner, gin.H{"end_date": "2024-12-01"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("end before stored start: expected 400, got %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodDelete, "/v1/travelplans/"+id, owner, nil); w.Code != http.StatusNoContent {
		t.Fatalf("owner DELETE: expected 204, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/travelplans/"+id, owner, nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete: expected 404, got %d", w.Code)
	}
}

func TestListRejectsBadPagination(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, query := range []string{"page=0", "limit=0", "page=-1", "limit=abc"} {
		w := doJSON(t, r, http.MethodGet, "/v1/travelplans?"+query, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body %s", query, w.Code, w.Body.String())
		}
	}
}

func TestTravelPlanBudgetRangeFilter(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "ada")

	createPlan(t, r, token, planBody(gin.H{"name": "cheap", "budget": 50.0, "is_public": true}))
	createPlan(t, r, token, planBody(gin.H{"name": "lavish", "budget": 5000.0, "is_public": true}))

	w := doJSON(t, r, http.MethodGet, "/v1/travelplans?budget_gte=100", "", nil)
	if total := decodeBody(t, w)["total"].(float64); total != 1 {
		t.Fatalf("budget_gte filter: expected 1 plan, got %v", total)
	}
}
