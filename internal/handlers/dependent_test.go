package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecastro/clientdesk/internal/models"
)

func TestDependentListRequiresClientID(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")

	w := httptest.NewRecorder()
	h.List(w, authedRequest(t, http.MethodGet, "/dependents", "ana@x.com", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestDependentListForeignClientIs404(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	seedUser(t, db, "bob@x.com", "Bob")
	client := seedClient(t, db, "bob@x.com", "ClienteDoBob")
	seedDependent(t, db, client.ID, "Dep1")

	w := httptest.NewRecorder()
	h.List(w, authedRequest(t, http.MethodGet, "/dependents?clientid=1", "ana@x.com", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestDependentCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	client := seedClient(t, db, "ana@x.com", "Cliente1")

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/dependent", "ana@x.com", map[string]any{
		"clientid": client.ID,
		"name":     "Dep1",
		"gender":   "Feminino",
		"type":     "Filho(a)",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		DependentID uint `json:"dependentId"`
	}
	decodeBody(t, w, &created)
	if created.DependentID == 0 {
		t.Fatal("expected generated dependent id")
	}

	w = httptest.NewRecorder()
	h.List(w, authedRequest(t, http.MethodGet, "/dependents?clientid=1", "ana@x.com", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var dependents []models.Dependent
	decodeBody(t, w, &dependents)
	if len(dependents) != 1 || dependents[0].Name != "Dep1" {
		t.Fatalf("unexpected dependents: %+v", dependents)
	}
}

func TestDependentCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	seedClient(t, db, "ana@x.com", "Cliente1")

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/dependent", "ana@x.com", map[string]any{
		"clientid":    1,
		"name":        "",
		"email":       "bad",
		"phonenumber": "123",
	}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	body := w.Body.String()
	for _, field := range []string{"name", "gender", "type", "email", "phonenumber"} {
		if !strings.Contains(body, field) {
			t.Fatalf("expected %s violation in %s", field, body)
		}
	}
}

func TestDependentCreateForForeignClientIs404(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	seedUser(t, db, "bob@x.com", "Bob")
	seedClient(t, db, "bob@x.com", "ClienteDoBob")

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/dependent", "ana@x.com", map[string]any{
		"clientid": 1,
		"name":     "Dep1",
		"gender":   "Feminino",
		"type":     "Filho(a)",
	}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestDependentUpdatePatchPreservesOmittedFields(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	client := seedClient(t, db, "ana@x.com", "Cliente1")
	dep := seedDependent(t, db, client.ID, "Dep1")

	req := authedRequest(t, http.MethodPut, "/dependent/1", "ana@x.com", map[string]any{
		"phonenumber": "11987654321",
		"type":        "Cônjuge",
	})
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Dependent
	decodeBody(t, w, &updated)
	if updated.PhoneNumber != "11987654321" || updated.Type != "Cônjuge" {
		t.Fatalf("patched fields not applied: %+v", updated)
	}
	if updated.Name != dep.Name || updated.Gender != dep.Gender {
		t.Fatalf("omitted fields must be preserved: %+v", updated)
	}
}

func TestDependentDelete(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	client := seedClient(t, db, "ana@x.com", "Cliente1")
	seedDependent(t, db, client.ID, "Dep1")

	req := authedRequest(t, http.MethodDelete, "/dependent/1", "ana@x.com", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	req = authedRequest(t, http.MethodDelete, "/dependent/1", "ana@x.com", nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestDependentUpdateForeignOwnerIs404(t *testing.T) {
	db := setupTestDB(t)
	h := NewDependentHandler(db)
	seedUser(t, db, "ana@x.com", "Ana")
	seedUser(t, db, "bob@x.com", "Bob")
	client := seedClient(t, db, "bob@x.com", "ClienteDoBob")
	seedDependent(t, db, client.ID, "Dep1")

	req := authedRequest(t, http.MethodPut, "/dependent/1", "ana@x.com", map[string]any{"name": "Hacked"})
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
