package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/push"
	"github.com/roomiesapp/roomies/internal/store"
	"github.com/roomiesapp/roomies/internal/websocket"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	users    *store.UserStore
	gamify   *store.GamifyStore
	hub      *websocket.Hub
	notifier *push.Notifier
	logger   *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, us *store.UserStore, gs *store.GamifyStore, hub *websocket.Hub, notifier *push.Notifier, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:    ts,
		users:    us,
		gamify:   gs,
		hub:      hub,
		notifier: notifier,
		logger:   logger.With("component", "task"),
	}
}

func (h *TaskHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	AssignedTo  *int64     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	SortOrder   int        `json:"sort_order"`
}

func (req *taskRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Points < 0 {
		return "points must not be negative"
	}
	return ""
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	tasks, err := h.tasks.List(householdID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	task, err := h.tasks.GetByID(id, householdID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Create handles POST /api/tasks (admin).
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.tasks.Create(ac.HouseholdID, req.Title, req.Description, req.Points, req.AssignedTo, req.DueDate, &ac.UserID)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("task", "created", task.ID, nil))
	if h.notifier != nil && task.AssignedTo != nil && *task.AssignedTo != ac.UserID {
		h.notifier.TaskAssigned(r.Context(), ac.HouseholdID, *task.AssignedTo, *task)
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id} (admin).
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	current, err := h.tasks.GetByID(id, ac.HouseholdID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	task, err := h.tasks.Update(id, ac.HouseholdID, req.Title, req.Description, req.Points, req.AssignedTo, req.DueDate, req.SortOrder)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("task", "updated", task.ID, nil))
	newlyAssigned := task.AssignedTo != nil &&
		(current.AssignedTo == nil || *current.AssignedTo != *task.AssignedTo)
	if h.notifier != nil && newlyAssigned && *task.AssignedTo != ac.UserID {
		h.notifier.TaskAssigned(r.Context(), ac.HouseholdID, *task.AssignedTo, *task)
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id} (admin). Past completions and the
// points they granted survive deletion.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	if err := h.tasks.Delete(id, householdID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.broadcast(householdID, websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Complete handles POST /api/tasks/{id}/complete. Any member may complete any
// task regardless of assignment.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	outcome, err := h.gamify.CompleteTask(ac.HouseholdID, id, ac.UserID)
	if err != nil {
		if isRuleError(err) {
			writeRuleError(w, err)
			return
		}
		h.logger.Error("complete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}
	if outcome == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("task", "completed", id, map[string]any{
		"user_id": ac.UserID,
		"points":  outcome.Completion.PointsEarned,
		"balance": outcome.NewBalance,
	}))
	for _, b := range outcome.EarnedBadges {
		h.broadcast(ac.HouseholdID, websocket.NewMessage("badge", "earned", b.ID, map[string]any{
			"user_id": ac.UserID,
		}))
	}
	for _, c := range outcome.CompletedChallenges {
		h.broadcast(ac.HouseholdID, websocket.NewMessage("challenge", "completed", c.ID, map[string]any{
			"user_id": ac.UserID,
		}))
	}

	if h.notifier != nil {
		actor, err := h.users.GetByID(ac.UserID)
		actorName := ""
		if err == nil && actor != nil {
			actorName = actor.Name
		}
		for _, b := range outcome.EarnedBadges {
			h.notifier.BadgeEarned(r.Context(), ac.HouseholdID, ac.UserID, b)
		}
		for _, c := range outcome.CompletedChallenges {
			h.notifier.ChallengeCompleted(r.Context(), ac.HouseholdID, ac.UserID, actorName, c)
		}
	}

	writeJSON(w, http.StatusOK, outcome)
}

// Uncomplete handles DELETE /api/completions/{id}: reverses a completion and
// claws back its points.
func (h *TaskHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid completion ID")
		return
	}

	completion, err := h.tasks.GetCompletion(id)
	if err != nil {
		h.logger.Error("get completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to uncomplete")
		return
	}
	if completion == nil {
		writeError(w, http.StatusNotFound, "completion not found")
		return
	}
	if completion.CompletedBy != ac.UserID && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "can only undo your own completions")
		return
	}

	if err := h.gamify.UncompleteTask(ac.HouseholdID, id, completion.CompletedBy); err != nil {
		if isRuleError(err) {
			writeRuleError(w, err)
			return
		}
		h.logger.Error("uncomplete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to uncomplete")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("task", "uncompleted", completion.TaskID, map[string]any{
		"user_id": completion.CompletedBy,
	}))
	w.WriteHeader(http.StatusNoContent)
}

// Completions handles GET /api/tasks/{id}/completions.
func (h *TaskHandler) Completions(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	task, err := h.tasks.GetByID(id, householdID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	completions, err := h.tasks.ListCompletions(id)
	if err != nil {
		h.logger.Error("list completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.TaskCompletion{}
	}
	writeJSON(w, http.StatusOK, completions)
}
