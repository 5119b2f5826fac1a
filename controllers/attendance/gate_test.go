package attendance

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"SMARTATTEND/helper"
	"SMARTATTEND/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	models.DB = db
}

func present(t *testing.T, adm, branch, date, session string) {
	t.Helper()
	err := models.DB.Create(&models.Attendance{
		AdmissionNo: adm,
		Name:        "Alice",
		Branch:      branch,
		Date:        date,
		Session:     session,
		Timestamp:   time.Now(),
		Status:      models.StatusPresent,
		Confidence:  0.9,
	}).Error
	if err != nil {
		t.Fatalf("insert attendance: %v", err)
	}
}

func TestCanMarkFirstTimeInWindow(t *testing.T) {
	setupDB(t)
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local)

	ok, reason := CanMark("S1", "CSE", helper.SessionAM, now)
	if !ok {
		t.Fatalf("CanMark = false (%q), want true", reason)
	}
}

func TestCanMarkStaleSessionOutsideWindow(t *testing.T) {
	setupDB(t)
	// session computed as AM but the clock has drifted past the window
	now := time.Date(2024, 3, 11, 13, 30, 0, 0, time.Local)

	ok, reason := CanMark("S1", "CSE", helper.SessionAM, now)
	if ok {
		t.Fatal("CanMark passed outside the AM window")
	}
	if reason != "Attendance only allowed 9AM-1PM for morning session" {
		t.Errorf("reason = %q", reason)
	}
}

func TestCanMarkAlreadyMarked(t *testing.T) {
	setupDB(t)
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local)
	present(t, "S1", "CSE", now.Format("2006-01-02"), helper.SessionAM)

	ok, reason := CanMark("S1", "CSE", helper.SessionAM, now)
	if ok {
		t.Fatal("CanMark passed for an already-marked tuple")
	}
	if reason != "Attendance already marked for AM session today" {
		t.Errorf("reason = %q", reason)
	}
}

func TestCanMarkDistinguishesTuple(t *testing.T) {
	setupDB(t)
	now := time.Date(2024, 3, 11, 15, 0, 0, 0, time.Local)
	today := now.Format("2006-01-02")
	present(t, "S1", "CSE", today, helper.SessionAM)
	present(t, "S2", "CSE", today, helper.SessionPM)
	present(t, "S1", "ECE", today, helper.SessionPM)

	// same identity, same day, other session: still markable
	if ok, reason := CanMark("S1", "CSE", helper.SessionPM, now); !ok {
		t.Errorf("PM after AM blocked: %q", reason)
	}
}

func TestUniqueIndexIsAuthoritative(t *testing.T) {
	setupDB(t)
	today := "2024-03-11"
	present(t, "S1", "CSE", today, helper.SessionAM)

	// second insert for the identical tuple must be rejected by the
	// database itself, independent of any gate check
	err := models.DB.Create(&models.Attendance{
		AdmissionNo: "S1",
		Name:        "Alice",
		Branch:      "CSE",
		Date:        today,
		Session:     helper.SessionAM,
		Timestamp:   time.Now(),
		Status:      models.StatusPresent,
		Confidence:  0.85,
	}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate insert error = %v, want gorm.ErrDuplicatedKey", err)
	}
}
