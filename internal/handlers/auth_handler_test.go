package handlers_test

import (
	"net/http"
	"testing"
)

func TestLoginIssuesReusableToken(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "ada")

	first := loginUser(t, r, "ada")
	second := loginUser(t, r, "ada")
	if first != second {
		t.Fatalf("expected login to reuse the stored credential")
	}

	w := doJSON(t, r, http.MethodGet, "/v1/users/me", first, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users/me: status %d body %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["username"]; got != "ada" {
		t.Fatalf("GET /users/me: unexpected username %v", got)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "ada")

	w := doJSON(t, r, http.MethodPost, "/v1/login", "", map[string]string{
		"username": "ada",
		"password": "wrong-password",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := fieldErrors(t, w)["non_field_errors"]; !ok {
		t.Fatalf("expected non_field_errors, got %s", w.Body.String())
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "ada")

	w := doJSON(t, r, http.MethodPost, "/v1/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d body %s", w.Code, w.Body.String())
	}

	// Revoked credential no longer authenticates.
	w = doJSON(t, r, http.MethodGet, "/v1/users/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}

	// A fresh login issues a new credential.
	fresh := loginUser(t, r, "ada")
	if fresh == token {
		t.Fatalf("expected a new credential after logout")
	}
}

// An unset JWT_SECRET must refuse to sign rather than fall back to a
// well-known constant; the env read happens at call time, after .env loading.
func TestLoginRequiresSigningSecret(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "ada")

	t.Setenv("JWT_SECRET", "")

	w := doJSON(t, r, http.MethodPost, "/v1/login", "", map[string]string{
		"username": "ada",
		"password": "hunter22",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("login without signing secret: expected 500, got %d body %s", w.Code, w.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/logout", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("logout without token: expected 401, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/travelplans", "garbage-token", map[string]interface{}{
		"name": "x", "start_date": "2025-01-01", "end_date": "2025-01-02", "budget": 1, "is_public": true,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("create with invalid token: expected 401, got %d", w.Code)
	}
}
