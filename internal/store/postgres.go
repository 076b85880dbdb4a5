// Package store provides storage backends for poopstats.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/poopstats/poopstats/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}

// ---- users / schedule ----

func (s *PostgresStore) RegisterUser(userID int64) error {
	_, err := s.db.Exec(`INSERT INTO users(user_id) VALUES ($1) ON CONFLICT(user_id) DO NOTHING`, userID)
	if err != nil {
		slog.Error("PostgresStore RegisterUser failed", "error", err, "userID", userID)
		return fmt.Errorf("register user %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) GetSchedule(userID int64) (*models.Schedule, error) {
	var sc models.Schedule
	err := s.db.QueryRow(
		`SELECT user_id, breakfast_time, lunch_time, dinner_time, toilet_time FROM users WHERE user_id = $1`,
		userID,
	).Scan(&sc.UserID, &sc.BreakfastTime, &sc.LunchTime, &sc.DinnerTime, &sc.ToiletTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSchedule failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("get schedule for %d: %w", userID, err)
	}
	return &sc, nil
}

func (s *PostgresStore) ListSchedules() ([]models.Schedule, error) {
	rows, err := s.db.Query(`SELECT user_id, breakfast_time, lunch_time, dinner_time, toilet_time FROM users`)
	if err != nil {
		slog.Error("PostgresStore ListSchedules query failed", "error", err)
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

func (s *PostgresStore) UpdateScheduleTime(userID int64, slot models.Slot, timeHHMM string) (bool, error) {
	col, ok := scheduleColumn(slot)
	if !ok {
		return false, fmt.Errorf("unknown slot %q", slot)
	}
	res, err := s.db.Exec(`UPDATE users SET `+col+` = $1 WHERE user_id = $2`, timeHHMM, userID)
	if err != nil {
		slog.Error("PostgresStore UpdateScheduleTime failed", "error", err, "userID", userID, "slot", slot)
		return false, fmt.Errorf("update %s time for %d: %w", slot, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- notification gate ----

func (s *PostgresStore) IsNotificationSent(userID int64, slot models.Slot, date string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM notifications_log WHERE user_id = $1 AND type = $2 AND date = $3`,
		userID, string(slot), date,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.Error("PostgresStore IsNotificationSent failed", "error", err, "userID", userID, "slot", slot, "date", date)
		return false, fmt.Errorf("notification check failed: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) MarkNotificationSent(userID int64, slot models.Slot, date string) error {
	_, err := s.db.Exec(
		`INSERT INTO notifications_log(user_id, type, date) VALUES ($1, $2, $3)
		 ON CONFLICT(user_id, type, date) DO NOTHING`,
		userID, string(slot), date,
	)
	if err != nil {
		slog.Error("PostgresStore MarkNotificationSent failed", "error", err, "userID", userID, "slot", slot, "date", date)
		return fmt.Errorf("mark notification sent failed: %w", err)
	}
	slog.Debug("PostgresStore MarkNotificationSent succeeded", "userID", userID, "slot", slot, "date", date)
	return nil
}

// ---- meals ----

func (s *PostgresStore) UpsertMeal(userID int64, date string, mealType models.MealType, description string) error {
	now := utcNow()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert meal: %w", err)
	}
	defer tx.Rollback()

	if mealType.IsSlotted() {
		var id int64
		err := tx.QueryRow(
			`SELECT id FROM meals WHERE user_id = $1 AND date = $2 AND meal_type = $3`,
			userID, date, string(mealType),
		).Scan(&id)
		switch {
		case err == nil:
			if _, err := tx.Exec(
				`UPDATE meals SET description = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
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
		`INSERT INTO meals(user_id, date, meal_type, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, date, string(mealType), description, now, now,
	); err != nil {
		slog.Error("PostgresStore UpsertMeal insert failed", "error", err, "userID", userID, "mealType", mealType)
		return fmt.Errorf("insert meal: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) ListMealsForDay(userID int64, date string) ([]models.Meal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, meal_type, description, created_at, updated_at
		 FROM meals WHERE user_id = $1 AND date = $2 ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return scanMeals(rows)
}

func (s *PostgresStore) UpdateMeal(userID, mealID int64, description string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE meals SET description = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
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

func (s *PostgresStore) DeleteMeal(userID, mealID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM meals WHERE id = $1 AND user_id = $2`, mealID, userID)
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

func (s *PostgresStore) AddMedicine(userID int64, date, name string, dosage *string) error {
	now := utcNow()
	_, err := s.db.Exec(
		`INSERT INTO medicines(user_id, date, name, dosage, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, date, name, nullString(dosage), now, now,
	)
	if err != nil {
		slog.Error("PostgresStore AddMedicine failed", "error", err, "userID", userID)
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMedicinesForDay(userID int64, date string) ([]models.Medicine, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, name, dosage, created_at, updated_at
		 FROM medicines WHERE user_id = $1 AND date = $2 ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return scanMedicines(rows)
}

func (s *PostgresStore) UpdateMedicine(userID, medID int64, name string, dosage *string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE medicines SET name = $1, dosage = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`,
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

func (s *PostgresStore) DeleteMedicine(userID, medID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM medicines WHERE id = $1 AND user_id = $2`, medID, userID)
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

func (s *PostgresStore) AddStool(userID int64, date string, quality int) error {
	now := utcNow()
	_, err := s.db.Exec(
		`INSERT INTO stools(user_id, date, quality, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		userID, date, quality, now, now,
	)
	if err != nil {
		slog.Error("PostgresStore AddStool failed", "error", err, "userID", userID)
		return fmt.Errorf("insert stool: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListStoolsForDay(userID int64, date string) ([]models.Stool, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, quality, created_at, updated_at
		 FROM stools WHERE user_id = $1 AND date = $2 ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list stools: %w", err)
	}
	return scanStools(rows)
}

func (s *PostgresStore) UpdateStool(userID, stoolID int64, quality int) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE stools SET quality = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
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

func (s *PostgresStore) DeleteStool(userID, stoolID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM stools WHERE id = $1 AND user_id = $2`, stoolID, userID)
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

func (s *PostgresStore) AddFeeling(userID int64, date, description string) error {
	now := utcNow()
	_, err := s.db.Exec(
		`INSERT INTO feelings(user_id, date, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		userID, date, description, now, now,
	)
	if err != nil {
		slog.Error("PostgresStore AddFeeling failed", "error", err, "userID", userID)
		return fmt.Errorf("insert feeling: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFeelingsForDay(userID int64, date string) ([]models.Feeling, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, description, created_at, updated_at
		 FROM feelings WHERE user_id = $1 AND date = $2 ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list feelings: %w", err)
	}
	return scanFeelings(rows)
}

func (s *PostgresStore) UpdateFeeling(userID, feelingID int64, description string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE feelings SET description = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
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

func (s *PostgresStore) DeleteFeeling(userID, feelingID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM feelings WHERE id = $1 AND user_id = $2`, feelingID, userID)
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

func (s *PostgresStore) FetchAllForReport(userID int64) (*models.ReportData, error) {
	report := &models.ReportData{}

	rows, err := s.db.Query(
		`SELECT id, user_id, date, meal_type, description, created_at, updated_at
		 FROM meals WHERE user_id = $1 ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report meals: %w", err)
	}
	if report.Meals, err = scanMeals(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT id, user_id, date, name, dosage, created_at, updated_at
		 FROM medicines WHERE user_id = $1 ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report medicines: %w", err)
	}
	if report.Medicines, err = scanMedicines(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT id, user_id, date, quality, created_at, updated_at
		 FROM stools WHERE user_id = $1 ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report stools: %w", err)
	}
	if report.Stools, err = scanStools(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT id, user_id, date, description, created_at, updated_at
		 FROM feelings WHERE user_id = $1 ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("report feelings: %w", err)
	}
	if report.Feelings, err = scanFeelings(rows); err != nil {
		return nil, err
	}

	return report, nil
}
