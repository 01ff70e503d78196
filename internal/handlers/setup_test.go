package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/session"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: name, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedClient(t *testing.T, db *gorm.DB, owner, name string) models.Client {
	t.Helper()
	client := models.Client{
		UserEmail:     owner,
		Name:          name,
		Email:         name + "@example.com",
		Profession:    "Advogada",
		PhoneNumber:   "11912345678",
		Gender:        "Feminino",
		BirthDate:     time.Date(1990, 5, 2, 0, 0, 0, 0, time.UTC),
		MaritalStatus: "Solteiro(a)",
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}

func seedDependent(t *testing.T, db *gorm.DB, clientID uint, name string) models.Dependent {
	t.Helper()
	dep := models.Dependent{ClientID: clientID, Name: name, Gender: "Feminino", Type: "Filho(a)"}
	if err := db.Create(&dep).Error; err != nil {
		t.Fatalf("seed dependent: %v", err)
	}
	return dep
}

// authedRequest builds a request carrying user in its context, the way the
// session middleware would after verifying the cookie.
func authedRequest(t *testing.T, method, target, user string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req = req.WithContext(session.WithUser(req.Context(), user))
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
}
