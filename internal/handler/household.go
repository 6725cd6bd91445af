package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
	"github.com/roomiesapp/roomies/internal/websocket"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	settings   *store.SettingsStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, ss *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{
		households: hs,
		settings:   ss,
		hub:        hub,
		logger:     logger.With("component", "household"),
	}
}

func (h *HouseholdHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

// Get handles GET /api/household: the session's current household.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	household, err := h.households.GetByID(householdID)
	if err != nil || household == nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}
	writeJSON(w, http.StatusOK, household)
}

type householdRequest struct {
	Name string `json:"name"`
}

// Update handles PUT /api/household (admin).
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	household, err := h.households.Update(householdID, req.Name)
	if err != nil {
		h.logger.Error("update household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update household")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("household", "updated", householdID, nil))
	writeJSON(w, http.StatusOK, household)
}

// RotateInviteCode handles POST /api/household/invite-code (admin):
// invalidates the old shareable code and issues a new one.
func (h *HouseholdHandler) RotateInviteCode(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	household, err := h.households.RotateInviteCode(householdID)
	if err != nil {
		h.logger.Error("rotate invite code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rotate invite code")
		return
	}
	writeJSON(w, http.StatusOK, household)
}

// Settings handles GET /api/household/settings.
func (h *HouseholdHandler) Settings(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	settings, err := h.settings.List(householdID)
	if err != nil {
		h.logger.Error("list settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	if settings == nil {
		settings = []model.Setting{}
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetSetting handles PUT /api/household/settings (admin).
func (h *HouseholdHandler) SetSetting(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := h.settings.Set(householdID, req.Key, req.Value); err != nil {
		h.logger.Error("set setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set setting")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("household", "settings_updated", householdID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSetting handles DELETE /api/household/settings/{key} (admin).
func (h *HouseholdHandler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := h.settings.Delete(householdID, key); err != nil {
		h.logger.Error("delete setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
