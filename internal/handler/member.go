package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
	"github.com/roomiesapp/roomies/internal/websocket"
)

type MemberHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	gamify     *store.GamifyStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewMemberHandler(us *store.UserStore, hs *store.HouseholdStore, gs *store.GamifyStore, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		users:      us,
		households: hs,
		gamify:     gs,
		hub:        hub,
		logger:     logger.With("component", "member"),
	}
}

func (h *MemberHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

// memberView is a household member joined with their user profile and live
// gamification counters.
type memberView struct {
	UserID                 int64  `json:"user_id"`
	Name                   string `json:"name"`
	Color                  string `json:"color"`
	AvatarEmoji            string `json:"avatar_emoji"`
	Role                   string `json:"role"`
	Points                 int    `json:"points"`
	StreakDays             int    `json:"streak_days"`
	LongestStreak          int    `json:"longest_streak"`
	TotalTasksCompleted    int    `json:"total_tasks_completed"`
	TasksCompletedThisWeek int    `json:"tasks_completed_this_week"`
}

func (h *MemberHandler) memberViews(householdID int64) ([]memberView, error) {
	members, err := h.households.ListMembers(householdID)
	if err != nil {
		return nil, err
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		user, err := h.users.GetByID(m.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		stats, err := h.gamify.StatsFor(householdID, m.UserID)
		if err != nil {
			return nil, err
		}
		views = append(views, memberView{
			UserID:                 m.UserID,
			Name:                   user.Name,
			Color:                  user.Color,
			AvatarEmoji:            user.AvatarEmoji,
			Role:                   m.Role,
			Points:                 stats.Points,
			StreakDays:             stats.StreakDays,
			LongestStreak:          stats.LongestStreak,
			TotalTasksCompleted:    stats.TotalTasksCompleted,
			TasksCompletedThisWeek: stats.TasksCompletedThisWeek,
		})
	}
	return views, nil
}

// List handles GET /api/members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	views, err := h.memberViews(householdID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Leaderboard handles GET /api/leaderboard: members ordered by points, ties
// broken by weekly completions.
func (h *MemberHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	views, err := h.memberViews(householdID)
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Points != views[j].Points {
			return views[i].Points > views[j].Points
		}
		return views[i].TasksCompletedThisWeek > views[j].TasksCompletedThisWeek
	})
	writeJSON(w, http.StatusOK, views)
}

type meResponse struct {
	User      *model.User      `json:"user"`
	Household *model.Household `json:"household"`
	Role      string           `json:"role"`
	Stats     gamify.Stats     `json:"stats"`
}

// Me handles GET /api/me.
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	user, err := h.users.GetByID(ac.UserID)
	if err != nil || user == nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	household, err := h.households.GetByID(ac.HouseholdID)
	if err != nil || household == nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	stats, err := h.gamify.StatsFor(ac.HouseholdID, ac.UserID)
	if err != nil {
		h.logger.Error("load stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User:      user,
		Household: household,
		Role:      ac.Role,
		Stats:     stats,
	})
}

type profileRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	AvatarEmoji string `json:"avatar_emoji"`
}

// UpdateProfile handles PUT /api/profile.
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.users.UpdateProfile(ac.UserID, req.Name, req.Color, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("member", "updated", ac.UserID, nil))
	writeJSON(w, http.StatusOK, user)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SetPIN handles POST /api/profile/pin.
func (h *MemberHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validPIN(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	if err := h.users.SetPINHash(ac.UserID, string(hash)); err != nil {
		h.logger.Error("store pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifyPIN handles POST /api/profile/pin/verify.
func (h *MemberHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.users.GetPINHash(ac.UserID)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify PIN")
		return
	}
	if hash == "" {
		writeError(w, http.StatusBadRequest, "no PIN set")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// ClearPIN handles DELETE /api/profile/pin.
func (h *MemberHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	if err := h.users.ClearPIN(ac.UserID); err != nil {
		h.logger.Error("clear pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustPointsRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// AdjustPoints handles POST /api/members/{id}/points (admin). Deductions that
// would take the balance below zero are rejected whole.
func (h *MemberHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member ID")
		return
	}

	var req adjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	member, err := h.households.GetMember(householdID, userID)
	if err != nil {
		h.logger.Error("check membership", "error", err)
		writeError(w, http.StatusInternalServerError, "adjustment failed")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	outcome, err := h.gamify.AdjustPoints(householdID, userID, req.Delta, req.Reason)
	if err != nil {
		if isRuleError(err) {
			writeRuleError(w, err)
			return
		}
		h.logger.Error("adjust points", "error", err)
		writeError(w, http.StatusInternalServerError, "adjustment failed")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("member", "points_adjusted", userID, map[string]any{
		"delta":   req.Delta,
		"balance": outcome.NewBalance,
	}))
	for _, b := range outcome.EarnedBadges {
		h.broadcast(householdID, websocket.NewMessage("badge", "earned", b.ID, map[string]any{
			"user_id": userID,
		}))
	}
	for _, c := range outcome.CompletedChallenges {
		h.broadcast(householdID, websocket.NewMessage("challenge", "completed", c.ID, map[string]any{
			"user_id": userID,
		}))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":              outcome.NewBalance,
		"earned_badges":        outcome.EarnedBadges,
		"completed_challenges": outcome.CompletedChallenges,
	})
}

// Remove handles DELETE /api/members/{id} (admin).
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member ID")
		return
	}
	if userID == ac.UserID {
		writeError(w, http.StatusBadRequest, "cannot remove yourself")
		return
	}

	if err := h.households.RemoveMember(ac.HouseholdID, userID); err != nil {
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("member", "removed", userID, nil))
	w.WriteHeader(http.StatusNoContent)
}
