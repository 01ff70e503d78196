package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/session"

	"gorm.io/gorm"
)

type ReminderHandler struct {
	db *gorm.DB
}

func NewReminderHandler(db *gorm.DB) *ReminderHandler {
	return &ReminderHandler{db: db}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())

	reminders := []models.Reminder{}
	if err := h.db.Where("useremail = ?", owner).Order("id").Find(&reminders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_title", nil)
		return
	}

	reminder := models.Reminder{UserEmail: owner, Title: body.Title}
	if err := h.db.Create(&reminder).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, reminder)
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.NotFound(w, "reminder")
		return
	}

	var reminder models.Reminder
	if err := h.db.Where("id = ? AND useremail = ?", id, owner).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.NotFound(w, "reminder")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	var patch struct {
		Title     *string `json:"title"`
		IsChecked *bool   `json:"ischecked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.IsChecked != nil {
		updates["ischecked"] = *patch.IsChecked
	}
	if len(updates) > 0 {
		if err := h.db.Model(&reminder).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
			return
		}
		if err := h.db.First(&reminder, reminder.ID).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", err.Error())
			return
		}
	}
	httpx.JSON(w, http.StatusOK, reminder)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, _ := session.UserFromContext(r.Context())
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.NotFound(w, "reminder")
		return
	}

	res := h.db.Where("id = ? AND useremail = ?", id, owner).Delete(&models.Reminder{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		httpx.NotFound(w, "reminder")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
