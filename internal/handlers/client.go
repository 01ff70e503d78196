package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/session"
	"github.com/ecastro/clientdesk/internal/validation"

	"gorm.io/gorm"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// ownedClient fetches a client by id scoped to its owner. Rows belonging to
// another user are indistinguishable from missing ones.
func ownedClient(db *gorm.DB, id uint, owner string) (*models.Client, error) {
	var client models.Client
	err := db.Where("id = ? AND useremail = ?", id, owner).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())

	clients := []models.Client{}
	if err := h.db.Where("useremail = ?", owner).Order("name").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	// The owner comes from the verified session, never from the payload.
	client.ID = 0
	client.UserEmail = owner

	v := make(validation.Violations)
	validation.Required("name", client.Name, v)
	validation.Required("email", client.Email, v)
	validation.Email("email", client.Email, v)
	validation.Required("phonenumber", client.PhoneNumber, v)
	validation.Required("gender", client.Gender, v)
	validation.Required("profession", client.Profession, v)
	validation.Required("maritalstatus", client.MaritalStatus, v)
	if client.BirthDate.IsZero() {
		v["birthdate"] = "required"
	}
	validation.PastDate("birthdate", client.BirthDate, time.Now(), v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	if err := h.db.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Client created successfully!",
		"clientId": client.ID,
	})
}

type clientPatch struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Profession    *string    `json:"profession"`
	PhoneNumber   *string    `json:"phonenumber"`
	Gender        *string    `json:"gender"`
	BirthDate     *time.Time `json:"birthdate"`
	MaritalStatus *string    `json:"maritalstatus"`

	Address           *string `json:"address"`
	AddressNumber     *string `json:"addressnumber"`
	AddressComplement *string `json:"addresscomplement"`

	PartnerName        *string    `json:"partnername"`
	PartnerEmail       *string    `json:"partneremail"`
	PartnerPhoneNumber *string    `json:"partnerphonenumber"`
	PartnerGender      *string    `json:"partnergender"`
	PartnerProfession  *string    `json:"partnerprofession"`
	PartnerBirthDate   *time.Time `json:"partnerbirthdate"`
}

// updates maps the fields present in the patch to their column names; omitted
// fields stay untouched in the row.
func (p clientPatch) updates() map[string]any {
	u := map[string]any{}
	set := func(col string, v any, present bool) {
		if present {
			u[col] = v
		}
	}
	set("name", deref(p.Name), p.Name != nil)
	set("email", deref(p.Email), p.Email != nil)
	set("profession", deref(p.Profession), p.Profession != nil)
	set("phonenumber", deref(p.PhoneNumber), p.PhoneNumber != nil)
	set("gender", deref(p.Gender), p.Gender != nil)
	set("maritalstatus", deref(p.MaritalStatus), p.MaritalStatus != nil)
	set("address", deref(p.Address), p.Address != nil)
	set("addressnumber", deref(p.AddressNumber), p.AddressNumber != nil)
	set("addresscomplement", deref(p.AddressComplement), p.AddressComplement != nil)
	set("partnername", deref(p.PartnerName), p.PartnerName != nil)
	set("partneremail", deref(p.PartnerEmail), p.PartnerEmail != nil)
	set("partnerphonenumber", deref(p.PartnerPhoneNumber), p.PartnerPhoneNumber != nil)
	set("partnergender", deref(p.PartnerGender), p.PartnerGender != nil)
	set("partnerprofession", deref(p.PartnerProfession), p.PartnerProfession != nil)
	if p.BirthDate != nil {
		u["birthdate"] = *p.BirthDate
	}
	if p.PartnerBirthDate != nil {
		u["partnerbirthdate"] = *p.PartnerBirthDate
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.NotFound(w, "client")
		return
	}

	client, err := ownedClient(h.db, id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "client")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	var patch clientPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	if updates := patch.updates(); len(updates) > 0 {
		if err := h.db.Model(client).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
			return
		}
		if err := h.db.First(client, client.ID).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
			return
		}
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete removes a client and every dependent attached to it in a single
// transaction, so a failure part way through leaves both intact.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.NotFound(w, "client")
		return
	}

	client, err := ownedClient(h.db, id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "client")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("clientid = ?", client.ID).Delete(&models.Dependent{}).Error; err != nil {
			return err
		}
		return tx.Delete(client).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Client deleted successfully!",
	})
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
