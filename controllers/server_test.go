package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"peermarket/middleware"
	"peermarket/models"
	"peermarket/routes"
)

// newTestServer wires the full router against a named shared in-memory
// sqlite database, one per test.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	// generous limits so tests never trip the per-user bucket
	middleware.SetRateLimitConfig(time.Second, 1000, 10)

	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Item{}, &models.ChatMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := gin.New()
	routes.RegisterRoutes(r, db)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
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

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// registerAndLogin creates a user and returns its access token.
func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	email := username + "@example.com"
	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"email":            email,
		"username":         username,
		"password":         "pass1234",
		"confirm_password": "pass1234",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", username, w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    email,
		"password": "pass1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", username, w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	decodeJSON(t, w, &resp)
	if resp.AccessToken == "" || resp.Username != username {
		t.Fatalf("login %s: bad response %s", username, w.Body.String())
	}
	return resp.AccessToken
}
