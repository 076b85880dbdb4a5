// Package store provides storage backends for poopstats.
//
// It includes an in-memory store for tests and development, plus persistent
// SQLite and PostgreSQL backends. All backends enforce the same contract:
// breakfast/lunch/dinner meals upsert in place per (user, date, meal type),
// snacks and all medicine/stool/feeling entries append, mutations are scoped
// to the owning user and report zero matched rows as (false, nil), and the
// notification log is a write-once insert-if-absent keyed by
// (user, type, date).
package store

import "github.com/poopstats/poopstats/internal/models"

// Store is the persistence contract shared by all backends.
type Store interface {
	// RegisterUser creates the user with default reminder times.
	// Registering an existing user is a no-op.
	RegisterUser(userID int64) error

	// GetSchedule returns the user's reminder schedule, or nil if the user
	// is not registered.
	GetSchedule(userID int64) (*models.Schedule, error)

	// ListSchedules returns the schedules of all registered users.
	ListSchedules() ([]models.Schedule, error)

	// UpdateScheduleTime sets one reminder slot to an "HH:MM" time. Returns
	// false when the user is not registered.
	UpdateScheduleTime(userID int64, slot models.Slot, timeHHMM string) (bool, error)

	// IsNotificationSent reports whether a reminder of the given slot was
	// already recorded for the user on the given ISO date.
	IsNotificationSent(userID int64, slot models.Slot, date string) (bool, error)

	// MarkNotificationSent records a dispatched reminder. Marking an
	// already-recorded (user, slot, date) triple is a no-op, not an error.
	MarkNotificationSent(userID int64, slot models.Slot, date string) error

	// UpsertMeal updates the existing row in place for breakfast/lunch/dinner
	// when one exists for (user, date, meal type), and inserts otherwise.
	// Snacks always insert.
	UpsertMeal(userID int64, date string, mealType models.MealType, description string) error
	ListMealsForDay(userID int64, date string) ([]models.Meal, error)
	UpdateMeal(userID, mealID int64, description string) (bool, error)
	DeleteMeal(userID, mealID int64) (bool, error)

	AddMedicine(userID int64, date, name string, dosage *string) error
	ListMedicinesForDay(userID int64, date string) ([]models.Medicine, error)
	UpdateMedicine(userID, medID int64, name string, dosage *string) (bool, error)
	DeleteMedicine(userID, medID int64) (bool, error)

	AddStool(userID int64, date string, quality int) error
	ListStoolsForDay(userID int64, date string) ([]models.Stool, error)
	UpdateStool(userID, stoolID int64, quality int) (bool, error)
	DeleteStool(userID, stoolID int64) (bool, error)

	AddFeeling(userID int64, date, description string) error
	ListFeelingsForDay(userID int64, date string) ([]models.Feeling, error)
	UpdateFeeling(userID, feelingID int64, description string) (bool, error)
	DeleteFeeling(userID, feelingID int64) (bool, error)

	// FetchAllForReport returns every entry of the user, each list ordered
	// by date then creation time.
	FetchAllForReport(userID int64) (*models.ReportData, error)

	Close() error
}
