package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/gamify"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
	"github.com/roomiesapp/roomies/internal/websocket"
)

type ChallengeHandler struct {
	challenges *store.ChallengeStore
	gamify     *store.GamifyStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewChallengeHandler(cs *store.ChallengeStore, gs *store.GamifyStore, hub *websocket.Hub, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		challenges: cs,
		gamify:     gs,
		hub:        hub,
		logger:     logger.With("component", "challenge"),
	}
}

func (h *ChallengeHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

// challengeView pairs a challenge with its derived status, the caller's
// participation, and their progress toward the criteria.
type challengeView struct {
	model.Challenge
	Status       gamify.ChallengeStatus `json:"status"`
	Participants int                    `json:"participants"`
	Joined       bool                   `json:"joined"`
	Completed    bool                   `json:"completed"`
	Progress     gamify.Progress        `json:"progress"`
}

func (h *ChallengeHandler) view(c model.Challenge, userID int64, stats gamify.Stats, now time.Time) (challengeView, error) {
	count, err := h.challenges.CountParticipants(c.ID)
	if err != nil {
		return challengeView{}, err
	}
	participant, err := h.challenges.GetParticipant(c.ID, userID)
	if err != nil {
		return challengeView{}, err
	}
	v := challengeView{
		Challenge:    c,
		Status:       gamify.StatusOfChallenge(c, count, now),
		Participants: count,
		Joined:       participant != nil,
		Completed:    participant != nil && participant.CompletedAt != nil,
		Progress:     gamify.ChallengeProgress(c, stats),
	}
	return v, nil
}

// List handles GET /api/challenges.
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	challenges, err := h.challenges.List(ac.HouseholdID)
	if err != nil {
		h.logger.Error("list challenges", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list challenges")
		return
	}
	stats, err := h.gamify.StatsFor(ac.HouseholdID, ac.UserID)
	if err != nil {
		h.logger.Error("load stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list challenges")
		return
	}

	now := time.Now()
	views := make([]challengeView, 0, len(challenges))
	for _, c := range challenges {
		v, err := h.view(c, ac.UserID, stats, now)
		if err != nil {
			h.logger.Error("challenge view", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list challenges")
			return
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// Get handles GET /api/challenges/{id}.
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid challenge ID")
		return
	}
	challenge, err := h.challenges.GetByID(id, ac.HouseholdID)
	if err != nil {
		h.logger.Error("get challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get challenge")
		return
	}
	if challenge == nil {
		writeError(w, http.StatusNotFound, "challenge not found")
		return
	}
	stats, err := h.gamify.StatsFor(ac.HouseholdID, ac.UserID)
	if err != nil {
		h.logger.Error("load stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get challenge")
		return
	}
	v, err := h.view(*challenge, ac.UserID, stats, time.Now())
	if err != nil {
		h.logger.Error("challenge view", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get challenge")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type challengeRequest struct {
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	PointReward     int                      `json:"point_reward"`
	DueDate         *time.Time               `json:"due_date"`
	MaxParticipants *int                     `json:"max_participants"`
	Criteria        model.CompletionCriteria `json:"criteria"`
}

// Create handles POST /api/challenges (admin).
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	challenge := model.Challenge{
		HouseholdID:     ac.HouseholdID,
		Title:           req.Title,
		Description:     req.Description,
		PointReward:     req.PointReward,
		DueDate:         req.DueDate,
		MaxParticipants: req.MaxParticipants,
		Criteria:        req.Criteria,
		Active:          true,
		CreatedBy:       &ac.UserID,
	}
	if err := gamify.ValidateChallenge(challenge); err != nil {
		writeRuleError(w, err)
		return
	}

	created, err := h.challenges.Create(challenge)
	if err != nil {
		h.logger.Error("create challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create challenge")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("challenge", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/challenges/{id} (admin).
func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid challenge ID")
		return
	}

	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	current, err := h.challenges.GetByID(id, ac.HouseholdID)
	if err != nil {
		h.logger.Error("get challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update challenge")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "challenge not found")
		return
	}

	updated := *current
	updated.Title = req.Title
	updated.Description = req.Description
	updated.PointReward = req.PointReward
	updated.DueDate = req.DueDate
	updated.MaxParticipants = req.MaxParticipants
	updated.Criteria = req.Criteria
	if err := gamify.ValidateChallenge(updated); err != nil {
		writeRuleError(w, err)
		return
	}

	challenge, err := h.challenges.Update(updated)
	if err != nil {
		h.logger.Error("update challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update challenge")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("challenge", "updated", challenge.ID, nil))
	writeJSON(w, http.StatusOK, challenge)
}

// Delete handles DELETE /api/challenges/{id} (admin). Points already awarded
// for completions are kept.
func (h *ChallengeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid challenge ID")
		return
	}
	if err := h.challenges.Delete(id, householdID); err != nil {
		h.logger.Error("delete challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete challenge")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("challenge", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Join handles POST /api/challenges/{id}/join.
func (h *ChallengeHandler) Join(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid challenge ID")
		return
	}

	participant, err := h.gamify.JoinChallenge(ac.HouseholdID, id, ac.UserID)
	if err != nil {
		if isRuleError(err) {
			writeRuleError(w, err)
			return
		}
		h.logger.Error("join challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join challenge")
		return
	}
	if participant == nil {
		writeError(w, http.StatusNotFound, "challenge not found")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("challenge", "joined", id, map[string]any{
		"user_id": ac.UserID,
	}))
	writeJSON(w, http.StatusCreated, participant)
}

// Leave handles POST /api/challenges/{id}/leave. Completed participations
// cannot be left.
func (h *ChallengeHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid challenge ID")
		return
	}

	if err := h.gamify.LeaveChallenge(ac.HouseholdID, id, ac.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusConflict, "not an active participant")
			return
		}
		h.logger.Error("leave challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to leave challenge")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("challenge", "left", id, map[string]any{
		"user_id": ac.UserID,
	}))
	w.WriteHeader(http.StatusNoContent)
}

// Participants handles GET /api/challenges/{id}/participants.
func (h *ChallengeHandler) Participants(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid challenge ID")
		return
	}
	challenge, err := h.challenges.GetByID(id, householdID)
	if err != nil {
		h.logger.Error("get challenge", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list participants")
		return
	}
	if challenge == nil {
		writeError(w, http.StatusNotFound, "challenge not found")
		return
	}

	participants, err := h.challenges.ListParticipants(id)
	if err != nil {
		h.logger.Error("list participants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list participants")
		return
	}
	if participants == nil {
		participants = []model.ChallengeParticipant{}
	}
	writeJSON(w, http.StatusOK, participants)
}
