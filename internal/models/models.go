// Package models defines the core data types shared across poopstats.
package models

import "time"

// Date formats used throughout the application. Storage keeps ISO dates so
// that string equality and ordering match calendar order.
const (
	DateFormatStorage = "2006-01-02"
	DateFormatDisplay = "02.01.2006"
	TimeFormatHHMM    = "15:04"
)

// Slot is one of the four daily reminder categories.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotToilet    Slot = "toilet"
)

// Slots lists all reminder slots in scheduling order.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotToilet}

// IsValid reports whether s is a known reminder slot.
func (s Slot) IsValid() bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotToilet:
		return true
	}
	return false
}

// MealType classifies a meal entry. Breakfast, lunch and dinner are unique
// per day (upsert); snacks are append-only.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// IsValid reports whether m is a known meal type.
func (m MealType) IsValid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// IsSlotted reports whether at most one meal of this type may exist per day.
func (m MealType) IsSlotted() bool {
	return m == MealBreakfast || m == MealLunch || m == MealDinner
}

// Default reminder times assigned on registration.
const (
	DefaultBreakfastTime = "08:00"
	DefaultLunchTime     = "13:00"
	DefaultDinnerTime    = "19:00"
	DefaultToiletTime    = "09:00"
)

// Schedule holds a user's configured reminder times ("HH:MM").
type Schedule struct {
	UserID        int64  `json:"user_id"`
	BreakfastTime string `json:"breakfast_time"`
	LunchTime     string `json:"lunch_time"`
	DinnerTime    string `json:"dinner_time"`
	ToiletTime    string `json:"toilet_time"`
}

// TimeFor returns the configured time for the given slot.
func (s Schedule) TimeFor(slot Slot) string {
	switch slot {
	case SlotBreakfast:
		return s.BreakfastTime
	case SlotLunch:
		return s.LunchTime
	case SlotDinner:
		return s.DinnerTime
	case SlotToilet:
		return s.ToiletTime
	}
	return ""
}

// Meal is a food diary entry for one day.
type Meal struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"` // ISO date
	MealType    MealType  `json:"meal_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Medicine is a medication intake entry. Dosage is nil when the user skipped it.
type Medicine struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	Dosage    *string   `json:"dosage,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stool is a stool quality entry on the Bristol scale (0..7).
type Stool struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Quality   int       `json:"quality"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feeling is a free-form well-being entry.
type Feeling struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReportData aggregates every entry of a user for the full export.
type ReportData struct {
	Meals     []Meal     `json:"meals"`
	Medicines []Medicine `json:"medicines"`
	Stools    []Stool    `json:"stools"`
	Feelings  []Feeling  `json:"feelings"`
}
