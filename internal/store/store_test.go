package store

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poopstats/poopstats/internal/models"
)

const testDate = "2026-08-30"

// User IDs are unique per test so runs against a persistent database
// never see each other's rows.
var userIDSeq atomic.Int64

func init() {
	userIDSeq.Store(time.Now().UnixNano())
}

func freshUserID() int64 {
	return userIDSeq.Add(1)
}

// withEachBackend runs the contract suite against every available backend.
func withEachBackend(t *testing.T, run func(t *testing.T, s Store)) {
	t.Run("Memory", func(t *testing.T) {
		run(t, NewInMemoryStore())
	})
	t.Run("SQLite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")
		s, err := NewSQLiteStore(WithSQLiteDSN(path))
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		run(t, s)
	})
	t.Run("Postgres", func(t *testing.T) {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" || DetectDSNType(dsn) != "postgres" {
			t.Skip("DATABASE_URL with a Postgres DSN not set")
		}
		s, err := NewPostgresStore(WithPostgresDSN(dsn))
		if err != nil {
			t.Fatalf("NewPostgresStore: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		run(t, s)
	})
}

func register(t *testing.T, s Store, userID int64) {
	t.Helper()
	if err := s.RegisterUser(userID); err != nil {
		t.Fatalf("RegisterUser(%d): %v", userID, err)
	}
}

func TestRegisterUserDefaults(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		sc, err := s.GetSchedule(testUser)
		if err != nil {
			t.Fatalf("GetSchedule: %v", err)
		}
		if sc == nil {
			t.Fatal("schedule missing after registration")
		}
		if sc.BreakfastTime != models.DefaultBreakfastTime ||
			sc.LunchTime != models.DefaultLunchTime ||
			sc.DinnerTime != models.DefaultDinnerTime ||
			sc.ToiletTime != models.DefaultToiletTime {
			t.Errorf("unexpected defaults: %+v", sc)
		}
	})
}

func TestRegisterUserIdempotent(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)
		if _, err := s.UpdateScheduleTime(testUser, models.SlotLunch, "14:00"); err != nil {
			t.Fatalf("UpdateScheduleTime: %v", err)
		}

		register(t, s, testUser)

		sc, err := s.GetSchedule(testUser)
		if err != nil {
			t.Fatalf("GetSchedule: %v", err)
		}
		if sc.LunchTime != "14:00" {
			t.Errorf("re-registration reset lunch time to %q", sc.LunchTime)
		}
	})
}

func TestGetScheduleUnknownUser(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		sc, err := s.GetSchedule(9999999)
		if err != nil {
			t.Fatalf("GetSchedule: %v", err)
		}
		if sc != nil {
			t.Errorf("expected nil schedule, got %+v", sc)
		}
	})
}

func TestUpdateScheduleTimeUnknownUser(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		updated, err := s.UpdateScheduleTime(9999999, models.SlotDinner, "20:00")
		if err != nil {
			t.Fatalf("UpdateScheduleTime: %v", err)
		}
		if updated {
			t.Error("update reported success for unknown user")
		}
	})
}

func TestNotificationGate(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		sent, err := s.IsNotificationSent(testUser, models.SlotBreakfast, testDate)
		if err != nil {
			t.Fatalf("IsNotificationSent: %v", err)
		}
		if sent {
			t.Fatal("fresh gate reports sent")
		}

		if err := s.MarkNotificationSent(testUser, models.SlotBreakfast, testDate); err != nil {
			t.Fatalf("MarkNotificationSent: %v", err)
		}
		// Duplicate mark must be a no-op, not an error.
		if err := s.MarkNotificationSent(testUser, models.SlotBreakfast, testDate); err != nil {
			t.Fatalf("duplicate MarkNotificationSent: %v", err)
		}

		sent, err = s.IsNotificationSent(testUser, models.SlotBreakfast, testDate)
		if err != nil {
			t.Fatalf("IsNotificationSent: %v", err)
		}
		if !sent {
			t.Error("gate lost the mark")
		}

		// Other slots and dates stay open.
		sent, _ = s.IsNotificationSent(testUser, models.SlotLunch, testDate)
		if sent {
			t.Error("mark leaked to another slot")
		}
		sent, _ = s.IsNotificationSent(testUser, models.SlotBreakfast, "2026-08-31")
		if sent {
			t.Error("mark leaked to another date")
		}
	})
}

func TestUpsertMealReplacesSlotted(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		if err := s.UpsertMeal(testUser, testDate, models.MealBreakfast, "каша"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}
		if err := s.UpsertMeal(testUser, testDate, models.MealBreakfast, "омлет"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}

		meals, err := s.ListMealsForDay(testUser, testDate)
		if err != nil {
			t.Fatalf("ListMealsForDay: %v", err)
		}
		if len(meals) != 1 {
			t.Fatalf("got %d breakfast rows, want 1", len(meals))
		}
		if meals[0].Description != "омлет" {
			t.Errorf("description = %q, want latest", meals[0].Description)
		}
	})
}

func TestUpsertMealAppendsSnacks(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		if err := s.UpsertMeal(testUser, testDate, models.MealSnack, "яблоко"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}
		if err := s.UpsertMeal(testUser, testDate, models.MealSnack, "орехи"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}

		meals, err := s.ListMealsForDay(testUser, testDate)
		if err != nil {
			t.Fatalf("ListMealsForDay: %v", err)
		}
		if len(meals) != 2 {
			t.Errorf("got %d snack rows, want 2", len(meals))
		}
	})
}

func TestUpsertMealScopedToDay(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		if err := s.UpsertMeal(testUser, testDate, models.MealLunch, "суп"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}
		if err := s.UpsertMeal(testUser, "2026-08-31", models.MealLunch, "плов"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}

		day1, _ := s.ListMealsForDay(testUser, testDate)
		day2, _ := s.ListMealsForDay(testUser, "2026-08-31")
		if len(day1) != 1 || len(day2) != 1 {
			t.Errorf("got %d/%d rows, want 1/1", len(day1), len(day2))
		}
		if day1[0].Description != "суп" || day2[0].Description != "плов" {
			t.Error("upsert crossed the day boundary")
		}
	})
}

func TestOwnershipOnUpdateAndDelete(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		otherUser := freshUserID()
		register(t, s, testUser)
		register(t, s, otherUser)

		if err := s.UpsertMeal(testUser, testDate, models.MealDinner, "рыба"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}
		meals, _ := s.ListMealsForDay(testUser, testDate)
		if len(meals) != 1 {
			t.Fatalf("setup: got %d meals", len(meals))
		}
		mealID := meals[0].ID

		updated, err := s.UpdateMeal(otherUser, mealID, "чужое")
		if err != nil {
			t.Fatalf("UpdateMeal: %v", err)
		}
		if updated {
			t.Error("foreign update reported success")
		}
		deleted, err := s.DeleteMeal(otherUser, mealID)
		if err != nil {
			t.Fatalf("DeleteMeal: %v", err)
		}
		if deleted {
			t.Error("foreign delete reported success")
		}

		meals, _ = s.ListMealsForDay(testUser, testDate)
		if len(meals) != 1 || meals[0].Description != "рыба" {
			t.Errorf("record damaged by foreign access: %+v", meals)
		}

		deleted, err = s.DeleteMeal(testUser, mealID)
		if err != nil {
			t.Fatalf("DeleteMeal: %v", err)
		}
		if !deleted {
			t.Error("owner delete failed")
		}
	})
}

func TestMedicineDosageRoundTrip(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		dosage := "200 мг"
		if err := s.AddMedicine(testUser, testDate, "Ибупрофен", &dosage); err != nil {
			t.Fatalf("AddMedicine: %v", err)
		}
		if err := s.AddMedicine(testUser, testDate, "Смекта", nil); err != nil {
			t.Fatalf("AddMedicine: %v", err)
		}

		meds, err := s.ListMedicinesForDay(testUser, testDate)
		if err != nil {
			t.Fatalf("ListMedicinesForDay: %v", err)
		}
		if len(meds) != 2 {
			t.Fatalf("got %d medicines, want 2", len(meds))
		}
		if meds[0].Dosage == nil || *meds[0].Dosage != "200 мг" {
			t.Errorf("first dosage = %v", meds[0].Dosage)
		}
		if meds[1].Dosage != nil {
			t.Errorf("second dosage = %v, want nil", *meds[1].Dosage)
		}
	})
}

func TestStoolAndFeelingLifecycle(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		register(t, s, testUser)

		if err := s.AddStool(testUser, testDate, 4); err != nil {
			t.Fatalf("AddStool: %v", err)
		}
		if err := s.AddFeeling(testUser, testDate, "норм"); err != nil {
			t.Fatalf("AddFeeling: %v", err)
		}

		stools, _ := s.ListStoolsForDay(testUser, testDate)
		if len(stools) != 1 || stools[0].Quality != 4 {
			t.Fatalf("unexpected stools: %+v", stools)
		}
		updated, err := s.UpdateStool(testUser, stools[0].ID, 6)
		if err != nil || !updated {
			t.Fatalf("UpdateStool: updated=%v err=%v", updated, err)
		}
		stools, _ = s.ListStoolsForDay(testUser, testDate)
		if stools[0].Quality != 6 {
			t.Errorf("quality = %d after update", stools[0].Quality)
		}

		feelings, _ := s.ListFeelingsForDay(testUser, testDate)
		if len(feelings) != 1 {
			t.Fatalf("unexpected feelings: %+v", feelings)
		}
		deleted, err := s.DeleteFeeling(testUser, feelings[0].ID)
		if err != nil || !deleted {
			t.Fatalf("DeleteFeeling: deleted=%v err=%v", deleted, err)
		}
		feelings, _ = s.ListFeelingsForDay(testUser, testDate)
		if len(feelings) != 0 {
			t.Errorf("feeling survived delete: %+v", feelings)
		}
	})
}

func TestFetchAllForReportIsolatesUsers(t *testing.T) {
	withEachBackend(t, func(t *testing.T, s Store) {
		testUser := freshUserID()
		otherUser := freshUserID()
		register(t, s, testUser)
		register(t, s, otherUser)

		if err := s.UpsertMeal(testUser, testDate, models.MealBreakfast, "каша"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}
		if err := s.AddStool(testUser, testDate, 3); err != nil {
			t.Fatalf("AddStool: %v", err)
		}
		if err := s.UpsertMeal(otherUser, testDate, models.MealBreakfast, "тост"); err != nil {
			t.Fatalf("UpsertMeal: %v", err)
		}

		data, err := s.FetchAllForReport(testUser)
		if err != nil {
			t.Fatalf("FetchAllForReport: %v", err)
		}
		if len(data.Meals) != 1 || data.Meals[0].Description != "каша" {
			t.Errorf("unexpected meals: %+v", data.Meals)
		}
		if len(data.Stools) != 1 {
			t.Errorf("unexpected stools: %+v", data.Stools)
		}
		if len(data.Medicines) != 0 || len(data.Feelings) != 0 {
			t.Error("empty sections are not empty")
		}
	})
}

func TestDetectDSNType(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost/db", "postgres"},
		{"postgresql://u:p@localhost/db", "postgres"},
		{"host=localhost user=u dbname=db", "postgres"},
		{"/var/lib/poopstats/poopstats.db", "sqlite"},
		{"file:test.db", "sqlite"},
		{"", "sqlite"},
	}
	for _, tc := range tests {
		if got := DetectDSNType(tc.dsn); got != tc.want {
			t.Errorf("DetectDSNType(%q) = %q, want %q", tc.dsn, got, tc.want)
		}
	}
}
