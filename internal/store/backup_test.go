package store

import (
	"testing"
	"time"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/model"
)

func setupBackupTestDB(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupCreate(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Create("backup-20260829.db.enc", "backups/backup-20260829.db.enc")
	if err != nil {
		t.Fatalf("create backup record: %v", err)
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.StartedAt == nil {
		t.Error("expected started_at to be set")
	}
	if b.CompletedAt != nil {
		t.Error("completed_at should be empty on create")
	}
}

func TestBackupLifecycle(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, _ := bs.Create("backup-1.db.enc", "backups/backup-1.db.enc")

	if err := bs.UpdateStatus(b.ID, model.BackupStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := bs.UpdateCompleted(b.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, err := bs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get backup: %v", err)
	}
	if got.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.SizeBytes != 4096 {
		t.Errorf("size = %d, want 4096", got.SizeBytes)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestBackupFailureKeepsError(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, _ := bs.Create("backup-1.db.enc", "backups/backup-1.db.enc")
	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "upload timed out"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorMessage != "upload timed out" {
		t.Errorf("error = %q", got.ErrorMessage)
	}
}

func TestBackupLatestCompleted(t *testing.T) {
	bs := setupBackupTestDB(t)

	first, _ := bs.Create("backup-1.db.enc", "backups/backup-1.db.enc")
	bs.UpdateCompleted(first.ID, 100)
	failed, _ := bs.Create("backup-2.db.enc", "backups/backup-2.db.enc")
	bs.UpdateStatus(failed.ID, model.BackupStatusFailed, "boom")

	latest, err := bs.LatestCompleted()
	if err != nil {
		t.Fatalf("latest completed: %v", err)
	}
	if latest == nil || latest.ID != first.ID {
		t.Errorf("latest = %+v, want backup %d", latest, first.ID)
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := setupBackupTestDB(t)

	old, _ := bs.Create("backup-old.db.enc", "backups/backup-old.db.enc")
	bs.UpdateCompleted(old.ID, 100)
	bs.db.Exec(`UPDATE backups SET created_at = datetime('now', '-60 days') WHERE id = ?`, old.ID)

	recent, _ := bs.Create("backup-new.db.enc", "backups/backup-new.db.enc")
	bs.UpdateCompleted(recent.ID, 100)

	keys, err := bs.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "backups/backup-old.db.enc" {
		t.Errorf("deleted keys = %v, want [backups/backup-old.db.enc]", keys)
	}

	remaining, _ := bs.List(0)
	if len(remaining) != 1 || remaining[0].ID != recent.ID {
		t.Errorf("remaining = %+v, want only the recent backup", remaining)
	}
}
