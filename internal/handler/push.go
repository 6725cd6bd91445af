package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

// validNotifTypes guards preference writes against arbitrary keys.
var validNotifTypes = map[string]bool{
	model.NotifTypeTaskDue:            true,
	model.NotifTypeTaskAssigned:       true,
	model.NotifTypeBadgeEarned:        true,
	model.NotifTypeChallengeCompleted: true,
	model.NotifTypeRewardRedeemed:     true,
}

type PushHandler struct {
	push           *store.PushStore
	vapidPublicKey string
	logger         *slog.Logger
}

func NewPushHandler(ps *store.PushStore, vapidPublicKey string, logger *slog.Logger) *PushHandler {
	return &PushHandler{
		push:           ps,
		vapidPublicKey: vapidPublicKey,
		logger:         logger.With("component", "push"),
	}
}

// VAPIDKey handles GET /api/push/vapid-key.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.vapidPublicKey == "" {
		writeError(w, http.StatusNotFound, "push notifications are not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": h.vapidPublicKey})
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint"`
	Keys       struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	DeviceName string `json:"device_name"`
}

// Subscribe handles POST /api/push/subscriptions. Re-subscribing an existing
// endpoint re-points it at the current user and household.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.push.CreateSubscription(ac.UserID, ac.HouseholdID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles DELETE /api/push/subscriptions.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.push.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions handles GET /api/push/subscriptions: the caller's devices in
// the current household.
func (h *PushHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	subs, err := h.push.ListForUser(ac.UserID, ac.HouseholdID)
	if err != nil {
		h.logger.Error("list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// Preferences handles GET /api/push/preferences. Types with no stored row
// default to enabled.
func (h *PushHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	stored, err := h.push.ListPreferences(ac.UserID, ac.HouseholdID)
	if err != nil {
		h.logger.Error("list preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list preferences")
		return
	}

	prefs := make(map[string]bool, len(validNotifTypes))
	for t := range validNotifTypes {
		prefs[t] = true
	}
	for t, enabled := range stored {
		prefs[t] = enabled
	}
	writeJSON(w, http.StatusOK, prefs)
}

type preferenceRequest struct {
	NotificationType string `json:"notification_type"`
	Enabled          bool   `json:"enabled"`
}

// SetPreference handles PUT /api/push/preferences.
func (h *PushHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.NotificationType = strings.TrimSpace(req.NotificationType)
	if !validNotifTypes[req.NotificationType] {
		writeError(w, http.StatusBadRequest, "unknown notification type")
		return
	}

	if err := h.push.SetPreference(ac.UserID, ac.HouseholdID, req.NotificationType, req.Enabled); err != nil {
		h.logger.Error("set preference", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set preference")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
