package store

import (
	"testing"

	"github.com/roomiesapp/roomies/internal/database"
)

func setupSettingsTestDB(t *testing.T) (*SettingsStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := NewHouseholdStore(db).Create("The Loft")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return NewSettingsStore(db), h.ID
}

func TestSettingsGetMissing(t *testing.T) {
	ss, householdID := setupSettingsTestDB(t)

	v, err := ss.Get(householdID, "theme")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if v != "" {
		t.Errorf("value = %q, want empty", v)
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	ss, householdID := setupSettingsTestDB(t)

	if err := ss.Set(householdID, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := ss.Get(householdID, "theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "dark" {
		t.Errorf("value = %q, want %q", v, "dark")
	}
}

func TestSettingsSetOverwrites(t *testing.T) {
	ss, householdID := setupSettingsTestDB(t)

	ss.Set(householdID, "theme", "dark")
	if err := ss.Set(householdID, "theme", "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _ := ss.Get(householdID, "theme")
	if v != "light" {
		t.Errorf("value = %q, want %q", v, "light")
	}

	settings, err := ss.List(householdID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(settings) != 1 {
		t.Errorf("settings = %d, want 1 (upsert, not insert)", len(settings))
	}
}

func TestSettingsScopedToHousehold(t *testing.T) {
	ss, householdID := setupSettingsTestDB(t)

	other, err := NewHouseholdStore(ss.db).Create("Beach House")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	ss.Set(householdID, "theme", "dark")
	ss.Set(other.ID, "theme", "light")

	v, _ := ss.Get(householdID, "theme")
	if v != "dark" {
		t.Errorf("value = %q, want %q", v, "dark")
	}
	v, _ = ss.Get(other.ID, "theme")
	if v != "light" {
		t.Errorf("other value = %q, want %q", v, "light")
	}
}

func TestSettingsDelete(t *testing.T) {
	ss, householdID := setupSettingsTestDB(t)

	ss.Set(householdID, "theme", "dark")
	if err := ss.Delete(householdID, "theme"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, _ := ss.Get(householdID, "theme")
	if v != "" {
		t.Errorf("value = %q, want empty after delete", v)
	}
}
