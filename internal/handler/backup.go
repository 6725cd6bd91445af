package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/roomiesapp/roomies/internal/backup"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

// BackupHandler exposes the server-wide backup manager. All routes are
// admin-only; backups cover the whole database, not one household.
type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		manager: manager,
		backups: bs,
		logger:  logger.With("component", "backup"),
	}
}

func (h *BackupHandler) requireEnabled(w http.ResponseWriter) bool {
	if h.manager == nil || !h.manager.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "backups are not configured")
		return false
	}
	return true
}

// Status handles GET /api/backups/status.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeJSON(w, http.StatusOK, backup.Status{State: backup.StateDisabled})
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// List handles GET /api/backups?limit=.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	backups, err := h.backups.List(limit)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// Run handles POST /api/backups: triggers an immediate snapshot.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.requireEnabled(w) {
		return
	}

	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}

	record, err := h.backups.GetByID(id)
	if err != nil || record == nil {
		h.logger.Error("get backup record", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Download handles GET /api/backups/{id}/download: streams the encrypted
// snapshot as stored in S3.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	if !h.requireEnabled(w) {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup ID")
		return
	}

	record, err := h.backups.GetByID(id)
	if err != nil {
		h.logger.Error("get backup", "error", err)
		writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("download backup", "error", err)
		writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream backup", "error", err)
	}
}
