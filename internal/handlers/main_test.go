package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arintala/wanderplan/config"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/server"
)

// newTestRouter builds the full router against an in-memory SQLite database.
// Max one open connection so every request sees the same memory store.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return server.NewRouter(db), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// fieldErrors pulls the accumulated validation map out of a 400 response.
func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decodeBody(t, w)
	errs, ok := body["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected errors map, got %q", w.Body.String())
	}
	return errs
}

func registerUser(t *testing.T, r *gin.Engine, username string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/users", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}
}

func loginUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/login", "", gin.H{
		"username": username,
		"password": "hunter22",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	token, ok := decodeBody(t, w)["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login %s: no token in response", username)
	}
	return token
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	registerUser(t, r, username)
	return loginUser(t, r, username)
}

func makeAdmin(t *testing.T, db *gorm.DB, username string) {
	t.Helper()
	result := db.Model(&models.User{}).Where("username = ?", username).
		Updates(map[string]interface{}{"is_staff": true, "is_superuser": true})
	if result.Error != nil || result.RowsAffected != 1 {
		t.Fatalf("promote %s to admin: %v", username, result.Error)
	}
}

func createPlan(t *testing.T, r *gin.Engine, token string, body gin.H) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/travelplans", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: status %d body %s", w.Code, w.Body.String())
	}
	id, ok := decodeBody(t, w)["id"].(string)
	if !ok {
		t.Fatalf("create plan: no id in response")
	}
	return id
}

func createDestination(t *testing.T, r *gin.Engine, token, name string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/destinations", token, gin.H{
		"name":    name,
		"country": "Italy",
		"city":    "Rome",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create destination: status %d body %s", w.Code, w.Body.String())
	}
	id, ok := decodeBody(t, w)["id"].(string)
	if !ok {
		t.Fatalf("create destination: no id in response")
	}
	return id
}
