package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/session"
	"github.com/ecastro/clientdesk/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserHandler struct {
	db       *gorm.DB
	sessions *session.Codec
}

func NewUserHandler(db *gorm.DB, sessions *session.Codec) *UserHandler {
	return &UserHandler{db: db, sessions: sessions}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Get returns the public profile for an email. The password hash is never
// serialized (json:"-" on the model).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_email", nil)
		return
	}
	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "user")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.MinLen("password", req.Password, 3, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "hash_error", nil)
		return
	}
	user := models.User{Email: req.Email, Name: req.Name, Password: string(hash)}
	if err := h.db.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"message": "User created successfully!"})
}

// Auth checks credentials passed as query parameters and, on success, sets the
// session cookie so subsequent calls carry a server-verified identity.
func (h *UserHandler) Auth(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	password := r.URL.Query().Get("password")
	if email == "" || password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_credentials", nil)
		return
	}
	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		httpx.JSON(w, http.StatusUnauthorized, map[string]any{"success": false})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		httpx.JSON(w, http.StatusUnauthorized, map[string]any{"success": false})
		return
	}
	h.sessions.Create(w, user.Email)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
