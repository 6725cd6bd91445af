package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

const defaultActivityLimit = 50

type ActivityHandler struct {
	activities *store.ActivityStore
	logger     *slog.Logger
}

func NewActivityHandler(as *store.ActivityStore, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: as,
		logger:     logger.With("component", "activity"),
	}
}

// List handles GET /api/activities?before_id=&limit=: the household feed,
// newest first, paginated by ID cursor.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	beforeID, _ := strconv.ParseInt(r.URL.Query().Get("before_id"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultActivityLimit
	}

	activities, err := h.activities.List(householdID, beforeID, limit)
	if err != nil {
		h.logger.Error("list activities", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

// Mine handles GET /api/activities/mine?limit=: the caller's own entries in
// the current household.
func (h *ActivityHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultActivityLimit
	}

	activities, err := h.activities.ListByUser(ac.HouseholdID, ac.UserID, limit)
	if err != nil {
		h.logger.Error("list user activities", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}
