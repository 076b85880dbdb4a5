// Package store provides storage backends for poopstats.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/poopstats/poopstats/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions for created database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path to the SQLite database file; the containing
// directory is created when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// ---- users / schedule ----

func (s *SQLiteStore) RegisterUser(userID int64) error {
	_, err := s.db.Exec(`INSERT INTO users(user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`, userID)
	if err != nil {
		slog.Error("SQLiteStore RegisterUser failed", "error", err, "userID", userID)
		return fmt.Errorf("register user %d: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) GetSchedule(userID int64) (*models.Schedule, error) {
	var sc models.Schedule
	err := s.db.QueryRow(
		`SELECT user_id, breakfast_time, lunch_time, dinner_time, toilet_time FROM users WHERE user_id = ?`,
		userID,
	).Scan(&sc.UserID, &sc.BreakfastTime, &sc.LunchTime, &sc.DinnerTime, &sc.ToiletTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSchedule failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("get schedule for %d: %w", userID, err)
	}
	return &sc, nil
}

func (s *SQLiteStore) ListSchedules() ([]models.Schedule, error) {
	rows, err := s.db.Query(`SELECT user_id, breakfast_time, lunch_time, dinner_time, toilet_time FROM users`)
	if err != nil {
		slog.Error("SQLiteStore ListSchedules query failed", "error", err)
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var sc models.Schedule
		if err := rows.Scan(&sc.UserID, &sc.BreakfastTime, &sc.LunchTime, &sc.DinnerTime, &sc.ToiletTime); err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, sc)
	}
	return schedules, rows.Err()
}

func (s *SQLiteStore) UpdateScheduleTime(userID int64, slot models.Slot, timeHHMM string) (bool, error) {
	col, ok := scheduleColumn(slot)
	if !ok {
		return false, fmt.Errorf("unknown slot %q", slot)
	}
	res, err := s.db.Exec(`UPDATE users SET `+col+` = ? WHERE user_id = ?`, timeHHMM, userID)
	if err != nil {
		slog.Error("SQLiteStore UpdateScheduleTime failed", "error", err, "userID", userID, "slot", slot)
		return false, fmt.Errorf("update %s time for %d: %w", slot, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scheduleColumn(slot models.Slot) (string, bool) {
	switch slot {
	case models.SlotBreakfast:
		return "breakfast_time", true
	case models.SlotLunch:
		return "lunch_time", true
	case models.SlotDinner:
		return "dinner_time", true
	case models.SlotToilet:
		return "toilet_time", true
	}
	return "", false
}

// ---- notification gate ----

func (s *SQLiteStore) IsNotificationSent(userID int64, slot models.Slot, date string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM notifications_log WHERE user_id = ? AND type = ? AND date = ?`,
		userID, string(slot), date,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.Error("SQLiteStore IsNotificationSent failed", "error", err, "userID", userID, "slot", slot, "date", date)
		return false, fmt.Errorf("notification check failed: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) MarkNotificationSent(userID int64, slot models.Slot, date string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO notifications_log(user_id, type, date) VALUES (?, ?, ?)`,
		userID, string(slot), date,
	)
	if err != nil {
		slog.Error("SQLiteStore MarkNotificationSent failed", "error", err, "userID", userID, "slot", slot, "date", date)
		return fmt.Errorf("mark notification sent failed: %w", err)
	}
	slog.Debug("SQLiteStore MarkNotificationSent succeeded", "userID", userID, "slot", slot, "date", date)
	return nil
}

// ---- meals ----

func (s *SQLiteStore) UpsertMeal(userID int64, date string, mealType models.MealType, description string) error {
	now := utcNow()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert meal: %w", err)
	}
	defer tx.Rollback()

	if mealType.IsSlotted() {
		var id int64
		err := tx.QueryRow(
			`SELECT id FROM meals WHERE user_id = ? AND date = ? AND meal_type = ?`,
			userID, date, string(mealType),
		).Scan(&id)
		switch {
		case err == nil:
			if _, err := tx.Exec(
				`UPDATE meals SET description = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
				description, now, id, userID,
			); err != nil {
				return fmt.Errorf("update meal %d: %w", id, err)
			}
			return tx.Commit()
		case err != sql.ErrNoRows:
			return fmt.Errorf("lookup meal slot: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meals(user_id, date, meal_type, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, date, string(mealType), description, now, now,
	); err != nil {
		slog.Error("SQLiteStore UpsertMeal insert failed", "error", err, "userID", userID, "mealType", mealType)
		return fmt.Errorf("insert meal: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListMealsForDay(userID int64, date string) ([]models.Meal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, meal_type, description, created_at, updated_at
		 FROM meals WHERE user_id = ? AND date = ? ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return scanMeals(rows)
}

func (s *SQLiteStore) UpdateMeal(userID, mealID int64, description string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE meals SET description = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		description, utcNow(), mealID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update meal %d: %w", mealID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteMeal(userID, mealID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM meals WHERE id = ? AND user_id = ?`, mealID, userID)
	if err != nil {
		return false, fmt.Errorf("delete meal %d: %w", mealID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- medicines ----

func (s *SQLiteStore) AddMedicine(userID int64, date, name string, dosage *string) error {
	now := utcNow()
	_, err := s.db.Exec(
		`INSERT INTO medicines(user_id, date, name, dosage, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, date, name, nullString(dosage), now, now,
	)
	if err != nil {
		slog.Error("SQLiteStore AddMedicine failed", "error", err, "userID", userID)
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListMedicinesForDay(userID int64, date string) ([]models.Medicine, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, name, dosage, created_at, updated_at
		 FROM medicines WHERE user_id = ? AND date = ? ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return scanMedicines(rows)
}

func (s *SQLiteStore) UpdateMedicine(userID, medID int64, name string, dosage *string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE medicines SET name = ?, dosage = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, nullString(dosage), utcNow(), medID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update medicine %d: %w", medID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteMedicine(userID, medID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM medicines WHERE id = ? AND user_id = ?`, medID, userID)
	if err != nil {
		return false, fmt.Errorf("delete medicine %d: %w", medID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- stools ----

func (s *SQLiteStore) AddStool(userID int64, date string, quality int) error {
	now := utcNow()
	_, err := s.db.Exec(
		`INSERT INTO stools(user_id, date, quality, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		userID, date, quality, now, now,
	)
	if err != nil {
		slog.Error("SQLiteStore AddStool failed", "error", err, "userID", userID)
		return fmt.Errorf("insert stool: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListStoolsForDay(userID int64, date string) ([]models.Stool, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, quality, created_at, updated_at
		 FROM stools WHERE user_id = ? AND date = ? ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list stools: %w", err)
	}
	return scanStools(rows)
}

func (s *SQLiteStore) UpdateStool(userID, stoolID int64, quality int) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE stools SET quality = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		quality, utcNow(), stoolID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update stool %d: %w", stoolID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteStool(userID, stoolID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM stools WHERE id = ? AND user_id = ?`, stoolID, userID)
	if err != nil {
		return false, fmt.Errorf("delete stool %d: %w", stoolID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- feelings ----

func (s *SQLiteStore) AddFeeling(userID int64, date, description string) error {
	now := utcNow()
	_, err := s.db.Exec(
		`INSERT INTO feelings(user_id, date, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		userID, date, description, now, now,
	)
	if err != nil {
		slog.Error("SQLiteStore AddFeeling failed", "error", err, "userID", userID)
		return fmt.Errorf("insert feeling: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListFeelingsForDay(userID int64, date string) ([]models.Feeling, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, description, created_at, updated_at
		 FROM feelings WHERE user_id = ? AND date = ? ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list feelings: %w", err)
	}
	return scanFeelings(rows)
}

func (s *SQLiteStore) UpdateFeeling(userID, feelingID int64, description string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE feelings SET description = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		description, utcNow(), feelingID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update feeling %d: %w", feelingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteFeeling(userID, feelingID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM feelings WHERE id = ? AND user_id = ?`, feelingID, userID)
	if err != nil {
		return false, fmt.Errorf("delete feeling %d: %w", feelingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- report ----

func (s *SQLiteStore) FetchAllForReport(userID int64) (*models.ReportData, error) {
	report := &models.ReportData{}

	rows, err := s.db.Query(
		`SELECT id, user_id, date, meal_type, description, created_at, updated_at
		 FROM meals WHERE user_id = ? ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report meals: %w", err)
	}
	if report.Meals, err = scanMeals(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT id, user_id, date, name, dosage, created_at, updated_at
		 FROM medicines WHERE user_id = ? ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report medicines: %w", err)
	}
	if report.Medicines, err = scanMedicines(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT id, user_id, date, quality, created_at, updated_at
		 FROM stools WHERE user_id = ? ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report stools: %w", err)
	}
	if report.Stools, err = scanStools(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT id, user_id, date, description, created_at, updated_at
		 FROM feelings WHERE user_id = ? ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report feelings: %w", err)
	}
	if report.Feelings, err = scanFeelings(rows); err != nil {
		return nil, err
	}

	return report, nil
}
