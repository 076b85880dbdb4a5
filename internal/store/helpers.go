package store

import (
	"database/sql"
	"strings"

	"github.com/poopstats/poopstats/internal/models"
)

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string: a PostgreSQL URL/DSN or a
	// SQLite file path.
	DSN string
}

// Option configures store creation.
type Option func(*Opts)

// WithPostgresDSN sets a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSQLiteDSN sets a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". PostgreSQL DSNs
// come either as URLs or as key=value connection strings; everything else is
// treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// nullString converts an optional string to a nullable database value.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr converts a nullable database value back to an optional string.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// scanMeals collects meal rows from a
// "id, user_id, date, meal_type, description, created_at, updated_at" query.
func scanMeals(rows *sql.Rows) ([]models.Meal, error) {
	defer rows.Close()
	var meals []models.Meal
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.MealType, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// scanMedicines collects medicine rows from a
// "id, user_id, date, name, dosage, created_at, updated_at" query.
func scanMedicines(rows *sql.Rows) ([]models.Medicine, error) {
	defer rows.Close()
	var meds []models.Medicine
	for rows.Next() {
		var m models.Medicine
		var dosage sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.Name, &dosage, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Dosage = stringPtr(dosage)
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// scanStools collects stool rows from a
// "id, user_id, date, quality, created_at, updated_at" query.
func scanStools(rows *sql.Rows) ([]models.Stool, error) {
	defer rows.Close()
	var stools []models.Stool
	for rows.Next() {
		var s models.Stool
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Quality, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stools = append(stools, s)
	}
	return stools, rows.Err()
}

// scanFeelings collects feeling rows from a
// "id, user_id, date, description, created_at, updated_at" query.
func scanFeelings(rows *sql.Rows) ([]models.Feeling, error) {
	defer rows.Close()
	var feelings []models.Feeling
	for rows.Next() {
		var f models.Feeling
		if err := rows.Scan(&f.ID, &f.UserID, &f.Date, &f.Description, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		feelings = append(feelings, f)
	}
	return feelings, rows.Err()
}
