package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/session"
	"github.com/ecastro/clientdesk/internal/validation"

	"gorm.io/gorm"
)

type DependentHandler struct {
	db *gorm.DB
}

func NewDependentHandler(db *gorm.DB) *DependentHandler {
	return &DependentHandler{db: db}
}

// ownedDependent resolves a dependent through its owning client, so a caller
// can never touch dependents hanging off someone else's client.
func ownedDependent(db *gorm.DB, id uint, owner string) (*models.Dependent, error) {
	var dep models.Dependent
	if err := db.First(&dep, id).Error; err != nil {
		return nil, err
	}
	if _, err := ownedClient(db, dep.ClientID, owner); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (h *DependentHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())

	clientID, ok := parseID(r.URL.Query().Get("clientid"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_clientid", nil)
		return
	}
	if _, err := ownedClient(h.db, clientID, owner); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "client")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	dependents := []models.Dependent{}
	if err := h.db.Where("clientid = ?", clientID).Order("name").Find(&dependents).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, dependents)
}

func (h *DependentHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())

	var dep models.Dependent
	if err := json.NewDecoder(r.Body).Decode(&dep); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	dep.ID = 0

	v := make(validation.Violations)
	validation.Required("name", dep.Name, v)
	validation.Required("gender", dep.Gender, v)
	validation.Required("type", dep.Type, v)
	validation.Email("email", dep.Email, v)
	validation.Phone("phonenumber", dep.PhoneNumber, v)
	if dep.BirthDate != nil {
		validation.PastDate("birthdate", *dep.BirthDate, time.Now(), v)
	}
	if dep.ClientID == 0 {
		v["clientid"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	if _, err := ownedClient(h.db, dep.ClientID, owner); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "client")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	if err := h.db.Create(&dep).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Dependent created successfully!",
		"dependentId": dep.ID,
	})
}

type dependentPatch struct {
	Name        *string    `json:"name"`
	Email       *string    `json:"email"`
	Gender      *string    `json:"gender"`
	BirthDate   *time.Time `json:"birthdate"`
	PhoneNumber *string    `json:"phonenumber"`
	Type        *string    `json:"type"`
}

func (p dependentPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Email != nil {
		u["email"] = *p.Email
	}
	if p.Gender != nil {
		u["gender"] = *p.Gender
	}
	if p.BirthDate != nil {
		u["birthdate"] = *p.BirthDate
	}
	if p.PhoneNumber != nil {
		u["phonenumber"] = *p.PhoneNumber
	}
	if p.Type != nil {
		u["type"] = *p.Type
	}
	return u
}

func (h *DependentHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.NotFound(w, "dependent")
		return
	}

	dep, err := ownedDependent(h.db, id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "dependent")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	var patch dependentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	if updates := patch.updates(); len(updates) > 0 {
		if err := h.db.Model(dep).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
			return
		}
		if err := h.db.First(dep, dep.ID).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
			return
		}
	}
	httpx.JSON(w, http.StatusOK, dep)
}

func (h *DependentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.NotFound(w, "dependent")
		return
	}

	dep, err := ownedDependent(h.db, id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "dependent")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	if err := h.db.Delete(dep).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Dependent deleted successfully!",
	})
}
