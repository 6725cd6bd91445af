package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/push"
	"github.com/roomiesapp/roomies/internal/store"
	"github.com/roomiesapp/roomies/internal/websocket"
)

type RewardHandler struct {
	rewards  *store.RewardStore
	users    *store.UserStore
	gamify   *store.GamifyStore
	hub      *websocket.Hub
	notifier *push.Notifier
	logger   *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, us *store.UserStore, gs *store.GamifyStore, hub *websocket.Hub, notifier *push.Notifier, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{
		rewards:  rs,
		users:    us,
		gamify:   gs,
		hub:      hub,
		notifier: notifier,
		logger:   logger.With("component", "reward"),
	}
}

func (h *RewardHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

// rewardView pairs a reward with its derived status so clients never have to
// re-derive stock or expiry state.
type rewardView struct {
	model.Reward
	Status gamify.RewardStatus `json:"status"`
}

func rewardViews(rewards []model.Reward, now time.Time) []rewardView {
	views := make([]rewardView, 0, len(rewards))
	for _, rw := range rewards {
		views = append(views, rewardView{Reward: rw, Status: gamify.StatusOfReward(rw, now)})
	}
	return views
}

// List handles GET /api/rewards.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	rewards, err := h.rewards.List(householdID)
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	writeJSON(w, http.StatusOK, rewardViews(rewards, time.Now()))
}

// Get handles GET /api/rewards/{id}.
func (h *RewardHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}
	reward, err := h.rewards.GetByID(id, householdID)
	if err != nil {
		h.logger.Error("get reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get reward")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}
	writeJSON(w, http.StatusOK, rewardView{Reward: *reward, Status: gamify.StatusOfReward(*reward, time.Now())})
}

type rewardRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Cost              int        `json:"cost"`
	QuantityAvailable *int       `json:"quantity_available"`
	MaxPerUser        *int       `json:"max_per_user"`
	ExpiresAt         *time.Time `json:"expires_at"`
}

// Create handles POST /api/rewards (admin).
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	reward := model.Reward{
		HouseholdID:       ac.HouseholdID,
		Title:             req.Title,
		Description:       req.Description,
		Cost:              req.Cost,
		QuantityAvailable: req.QuantityAvailable,
		MaxPerUser:        req.MaxPerUser,
		ExpiresAt:         req.ExpiresAt,
		Available:         true,
		CreatedBy:         &ac.UserID,
	}
	if err := gamify.ValidateReward(reward); err != nil {
		writeRuleError(w, err)
		return
	}

	created, err := h.rewards.Create(reward)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("reward", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/rewards/{id} (admin): title, description, and cost.
// Quantity and expiration have dedicated endpoints because changing them can
// re-enable a sold-out or expired reward.
func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Cost <= 0 {
		writeError(w, http.StatusBadRequest, "cost must be positive")
		return
	}

	reward, err := h.rewards.Update(id, householdID, req.Title, req.Description, req.Cost)
	if err != nil {
		h.logger.Error("update reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("reward", "updated", reward.ID, nil))
	writeJSON(w, http.StatusOK, reward)
}

type quantityRequest struct {
	QuantityAvailable *int `json:"quantity_available"`
}

// UpdateQuantity handles PUT /api/rewards/{id}/quantity (admin). Restocking a
// sold-out reward flips it back to available.
func (h *RewardHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.QuantityAvailable != nil && *req.QuantityAvailable < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	reward, err := h.rewards.UpdateQuantity(id, householdID, req.QuantityAvailable)
	if err != nil {
		h.logger.Error("update quantity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update quantity")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("reward", "updated", reward.ID, nil))
	writeJSON(w, http.StatusOK, reward)
}

type expirationRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// UpdateExpiration handles PUT /api/rewards/{id}/expiration (admin).
func (h *RewardHandler) UpdateExpiration(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}
	var req expirationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	reward, err := h.rewards.UpdateExpiration(id, householdID, req.ExpiresAt)
	if err != nil {
		h.logger.Error("update expiration", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update expiration")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("reward", "updated", reward.ID, nil))
	writeJSON(w, http.StatusOK, reward)
}

// SetAvailable handles PUT /api/rewards/{id}/available (admin).
func (h *RewardHandler) SetAvailable(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	reward, err := h.rewards.SetAvailable(id, householdID, req.Available)
	if err != nil {
		h.logger.Error("set available", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("reward", "updated", reward.ID, nil))
	writeJSON(w, http.StatusOK, reward)
}

// Redeem handles POST /api/rewards/{id}/redeem.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}

	outcome, err := h.gamify.RedeemReward(ac.HouseholdID, id, ac.UserID)
	if err != nil {
		if isRuleError(err) {
			writeRuleError(w, err)
			return
		}
		h.logger.Error("redeem reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to redeem reward")
		return
	}
	if outcome == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("reward", "redeemed", id, map[string]any{
		"user_id": ac.UserID,
		"balance": outcome.NewBalance,
	}))
	for _, b := range outcome.EarnedBadges {
		h.broadcast(ac.HouseholdID, websocket.NewMessage("badge", "earned", b.ID, map[string]any{
			"user_id": ac.UserID,
		}))
	}

	if h.notifier != nil {
		actor, lookupErr := h.users.GetByID(ac.UserID)
		actorName := ""
		if lookupErr == nil && actor != nil {
			actorName = actor.Name
		}
		h.notifier.RewardRedeemed(r.Context(), ac.HouseholdID, ac.UserID, actorName, *outcome.Reward)
		for _, b := range outcome.EarnedBadges {
			h.notifier.BadgeEarned(r.Context(), ac.HouseholdID, ac.UserID, b)
		}
	}

	writeJSON(w, http.StatusOK, outcome)
}

// MyRedemptions handles GET /api/redemptions.
func (h *RewardHandler) MyRedemptions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	redemptions, err := h.rewards.ListRedemptionsByUser(userID)
	if err != nil {
		h.logger.Error("list redemptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, redemptions)
}

// Redemptions handles GET /api/rewards/{id}/redemptions (admin).
func (h *RewardHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward ID")
		return
	}
	reward, err := h.rewards.GetByID(id, householdID)
	if err != nil {
		h.logger.Error("get reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	redemptions, err := h.rewards.ListRedemptionsByReward(id)
	if err != nil {
		h.logger.Error("list redemptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, redemptions)
}
