package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
	"github.com/roomiesapp/roomies/internal/websocket"
)

type BadgeHandler struct {
	badges *store.BadgeStore
	gamify *store.GamifyStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewBadgeHandler(bs *store.BadgeStore, gs *store.GamifyStore, hub *websocket.Hub, logger *slog.Logger) *BadgeHandler {
	return &BadgeHandler{
		badges: bs,
		gamify: gs,
		hub:    hub,
		logger: logger.With("component", "badge"),
	}
}

// badgeView pairs a badge definition with the caller's earned state and
// progress toward the requirement.
type badgeView struct {
	model.Badge
	Earned   bool            `json:"earned"`
	Progress gamify.Progress `json:"progress"`
}

// List handles GET /api/badges: active badges annotated with the caller's
// earned flag and progress.
func (h *BadgeHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	badges, err := h.badges.ListActive()
	if err != nil {
		h.logger.Error("list badges", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list badges")
		return
	}
	earned, err := h.badges.EarnedSet(ac.UserID)
	if err != nil {
		h.logger.Error("earned set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list badges")
		return
	}
	stats, err := h.gamify.StatsFor(ac.HouseholdID, ac.UserID)
	if err != nil {
		h.logger.Error("load stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list badges")
		return
	}

	views := make([]badgeView, 0, len(badges))
	for _, b := range badges {
		views = append(views, badgeView{
			Badge:    b,
			Earned:   earned[b.ID],
			Progress: gamify.BadgeProgress(b, stats),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// Earned handles GET /api/badges/earned: the caller's earned badges in earn
// order.
func (h *BadgeHandler) Earned(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	earned, err := h.badges.ListEarnedByUser(userID)
	if err != nil {
		h.logger.Error("list earned", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list earned badges")
		return
	}
	if earned == nil {
		earned = []model.EarnedBadge{}
	}
	writeJSON(w, http.StatusOK, earned)
}

// ListAll handles GET /api/badges/all (admin): every definition including
// deactivated ones.
func (h *BadgeHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	badges, err := h.badges.List()
	if err != nil {
		h.logger.Error("list all badges", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list badges")
		return
	}
	if badges == nil {
		badges = []model.Badge{}
	}
	writeJSON(w, http.StatusOK, badges)
}

type badgeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Type        model.BadgeType   `json:"type"`
	Rarity      model.BadgeRarity `json:"rarity"`
	Requirement int               `json:"requirement"`
}

// Create handles POST /api/badges (admin).
func (h *BadgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req badgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	badge := model.Badge{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Type:        req.Type,
		Rarity:      req.Rarity,
		Requirement: req.Requirement,
		Active:      true,
	}
	if err := gamify.ValidateBadge(badge); err != nil {
		writeRuleError(w, err)
		return
	}

	created, err := h.badges.Create(badge)
	if err != nil {
		h.logger.Error("create badge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create badge")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("badge", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/badges/{id} (admin). Type and rarity are fixed at
// creation.
func (h *BadgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid badge ID")
		return
	}
	var req badgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Requirement <= 0 {
		writeError(w, http.StatusBadRequest, "requirement must be positive")
		return
	}

	badge, err := h.badges.Update(id, req.Name, req.Description, req.Icon, req.Requirement)
	if err != nil {
		h.logger.Error("update badge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update badge")
		return
	}
	if badge == nil {
		writeError(w, http.StatusNotFound, "badge not found")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("badge", "updated", badge.ID, nil))
	writeJSON(w, http.StatusOK, badge)
}

// SetActive handles PUT /api/badges/{id}/active (admin). Badges are
// deactivated rather than deleted so earned history stays intact.
func (h *BadgeHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid badge ID")
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	badge, err := h.badges.SetActive(id, req.Active)
	if err != nil {
		h.logger.Error("set badge active", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update badge")
		return
	}
	if badge == nil {
		writeError(w, http.StatusNotFound, "badge not found")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("badge", "updated", badge.ID, nil))
	writeJSON(w, http.StatusOK, badge)
}

func (h *BadgeHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}
