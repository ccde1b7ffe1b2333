package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/reefkeep/tankd/internal/model"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	tank := model.Tank{
		Name:        "Roundtrip tank",
		VolumeLiter: 120,
		WaterType:   model.WaterBrackish,
		SetupDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateTank(t.Context(), &tank); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.GetTank(t.Context(), tank.ID)
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Name != "Roundtrip tank" {
		t.Fatalf("unexpected name after roundtrip: %q", got.Name)
	}
}
