package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestDestinationCoordinateValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "ada")

	w := doJSON(t, r, http.MethodPost, "/v1/destinations", token, gin.H{
		"name":      "Nowhere",
		"country":   "Atlantis",
		"latitude":  91.0,
		"longitude": -200.0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
	}
	errs := fieldErrors(t, w)
	if _, ok := errs["latitude"]; !ok {
		t.Fatalf("expected latitude error, got %s", w.Body.String())
	}
	if _, ok := errs["longitude"]; !ok {
		t.Fatalf("expected longitude error accumulated alongside latitude, got %s", w.Body.String())
	}
}

func TestDestinationUniqueNameCityCountry(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "ada")

	createDestination(t, r, token, "Colosseum")

	w := doJSON(t, r, http.MethodPost, "/v1/destinations", token, gin.H{
		"name":    "Colosseum",
		"country": "Italy",
		"city":    "Rome",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate, got %d", w.Code)
	}
	if _, ok := fieldErrors(t, w)["non_field_errors"]; !ok {
		t.Fatalf("expected non_field_errors, got %s", w.Body.String())
	}
}

func TestDestinationOwnership(t *testing.T) {
	r, db := newTestRouter(t)
	owner := registerAndLogin(t, r, "ada")
	other := registerAndLogin(t, r, "bob")
	registerUser(t, r, "root")
	makeAdmin(t, db, "root")
	admin := loginUser(t, r, "root")

	id := createDestination(t, r, owner, "Colosseum")

	// Reads are open, even anonymously.
	if w := doJSON(t, r, http.MethodGet, "/v1/destinations/"+id, "", nil); w.Code != http.StatusOK {
		t.Fatalf("anonymous GET: status %d", w.Code)
	}

	patch := gin.H{"description": "Flavian amphitheatre"}
	if w := doJSON(t, r, http.MethodPatch, "/v1/destinations/"+id, other, patch); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner PATCH: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPatch, "/v1/destinations/"+id, owner, patch); w.Code != http.StatusOK {
		t.Fatalf("owner PATCH: expected 200, got %d body %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/destinations/"+id, other, nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner DELETE: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/destinations/"+id, admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin DELETE: expected 204, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/destinations/"+id, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete: expected 404, got %d", w.Code)
	}
}

func TestDestinationListFilters(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "ada")

	createDestination(t, r, token, "Colosseum")
	createDestination(t, r, token, "Pantheon")

	w := doJSON(t, r, http.MethodGet, "/v1/destinations?name=colo", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	body := decodeBody(t, w)
	if total := body["total"].(float64); total != 1 {
		t.Fatalf("case-insensitive name filter: expected 1 match, got %v", total)
	}
}
