package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/poopstats/poopstats/internal/models"
)

// Compile-time check that InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps everything in process memory. It backs tests and
// DSN-less development runs and enforces the same upsert/ownership/gate
// semantics as the SQL backends.
type InMemoryStore struct {
	mu            sync.Mutex
	nextID        int64
	schedules     map[int64]models.Schedule
	notifications map[notificationKey]struct{}
	meals         []models.Meal
	medicines     []models.Medicine
	stools        []models.Stool
	feelings      []models.Feeling
}

type notificationKey struct {
	userID int64
	slot   models.Slot
	date   string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		schedules:     make(map[int64]models.Schedule),
		notifications: make(map[notificationKey]struct{}),
	}
}

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) nextEntryID() int64 {
	s.nextID++
	return s.nextID
}

// ---- users / schedule ----

func (s *InMemoryStore) RegisterUser(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[userID]; ok {
		return nil
	}
	s.schedules[userID] = models.Schedule{
		UserID:        userID,
		BreakfastTime: models.DefaultBreakfastTime,
		LunchTime:     models.DefaultLunchTime,
		DinnerTime:    models.DefaultDinnerTime,
		ToiletTime:    models.DefaultToiletTime,
	}
	return nil
}

func (s *InMemoryStore) GetSchedule(userID int64) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[userID]
	if !ok {
		return nil, nil
	}
	return &sc, nil
}

func (s *InMemoryStore) ListSchedules() ([]models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedules := make([]models.Schedule, 0, len(s.schedules))
	for _, sc := range s.schedules {
		schedules = append(schedules, sc)
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].UserID < schedules[j].UserID })
	return schedules, nil
}

func (s *InMemoryStore) UpdateScheduleTime(userID int64, slot models.Slot, timeHHMM string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[userID]
	if !ok {
		return false, nil
	}
	switch slot {
	case models.SlotBreakfast:
		sc.BreakfastTime = timeHHMM
	case models.SlotLunch:
		sc.LunchTime = timeHHMM
	case models.SlotDinner:
		sc.DinnerTime = timeHHMM
	case models.SlotToilet:
		sc.ToiletTime = timeHHMM
	default:
		return false, fmt.Errorf("unknown slot %q", slot)
	}
	s.schedules[userID] = sc
	return true, nil
}

// ---- notification gate ----

func (s *InMemoryStore) IsNotificationSent(userID int64, slot models.Slot, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notifications[notificationKey{userID, slot, date}]
	return ok, nil
}

func (s *InMemoryStore) MarkNotificationSent(userID int64, slot models.Slot, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[notificationKey{userID, slot, date}] = struct{}{}
	return nil
}

// NotificationCount reports the number of recorded notifications (for tests).
func (s *InMemoryStore) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

// ---- meals ----

func (s *InMemoryStore) UpsertMeal(userID int64, date string, mealType models.MealType, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if mealType.IsSlotted() {
		for i := range s.meals {
			m := &s.meals[i]
			if m.UserID == userID && m.Date == date && m.MealType == mealType {
				m.Description = description
				m.UpdatedAt = now
				return nil
			}
		}
	}
	s.meals = append(s.meals, models.Meal{
		ID:          s.nextEntryID(),
		UserID:      userID,
		Date:        date,
		MealType:    mealType,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return nil
}

func (s *InMemoryStore) ListMealsForDay(userID int64, date string) ([]models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Meal
	for _, m := range s.meals {
		if m.UserID == userID && m.Date == date {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateMeal(userID, mealID int64, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.meals {
		m := &s.meals[i]
		if m.ID == mealID && m.UserID == userID {
			m.Description = description
			m.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) DeleteMeal(userID, mealID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.meals {
		if m.ID == mealID && m.UserID == userID {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ---- medicines ----

func (s *InMemoryStore) AddMedicine(userID int64, date, name string, dosage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.medicines = append(s.medicines, models.Medicine{
		ID:        s.nextEntryID(),
		UserID:    userID,
		Date:      date,
		Name:      name,
		Dosage:    dosage,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (s *InMemoryStore) ListMedicinesForDay(userID int64, date string) ([]models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Medicine
	for _, m := range s.medicines {
		if m.UserID == userID && m.Date == date {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateMedicine(userID, medID int64, name string, dosage *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.medicines {
		m := &s.medicines[i]
		if m.ID == medID && m.UserID == userID {
			m.Name = name
			m.Dosage = dosage
			m.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) DeleteMedicine(userID, medID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.medicines {
		if m.ID == medID && m.UserID == userID {
			s.medicines = append(s.medicines[:i], s.medicines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ---- stools ----

func (s *InMemoryStore) AddStool(userID int64, date string, quality int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.stools = append(s.stools, models.Stool{
		ID:        s.nextEntryID(),
		UserID:    userID,
		Date:      date,
		Quality:   quality,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (s *InMemoryStore) ListStoolsForDay(userID int64, date string) ([]models.Stool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Stool
	for _, st := range s.stools {
		if st.UserID == userID && st.Date == date {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStool(userID, stoolID int64, quality int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stools {
		st := &s.stools[i]
		if st.ID == stoolID && st.UserID == userID {
			st.Quality = quality
			st.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) DeleteStool(userID, stoolID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range s.stools {
		if st.ID == stoolID && st.UserID == userID {
			s.stools = append(s.stools[:i], s.stools[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ---- feelings ----

func (s *InMemoryStore) AddFeeling(userID int64, date, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.feelings = append(s.feelings, models.Feeling{
		ID:          s.nextEntryID(),
		UserID:      userID,
		Date:        date,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return nil
}

func (s *InMemoryStore) ListFeelingsForDay(userID int64, date string) ([]models.Feeling, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Feeling
	for _, f := range s.feelings {
		if f.UserID == userID && f.Date == date {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateFeeling(userID, feelingID int64, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.feelings {
		f := &s.feelings[i]
		if f.ID == feelingID && f.UserID == userID {
			f.Description = description
			f.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) DeleteFeeling(userID, feelingID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.feelings {
		if f.ID == feelingID && f.UserID == userID {
			s.feelings = append(s.feelings[:i], s.feelings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ---- report ----

func (s *InMemoryStore) FetchAllForReport(userID int64) (*models.ReportData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &models.ReportData{}
	for _, m := range s.meals {
		if m.UserID == userID {
			report.Meals = append(report.Meals, m)
		}
	}
	for _, m := range s.medicines {
		if m.UserID == userID {
			report.Medicines = append(report.Medicines, m)
		}
	}
	for _, st := range s.stools {
		if st.UserID == userID {
			report.Stools = append(report.Stools, st)
		}
	}
	for _, f := range s.feelings {
		if f.UserID == userID {
			report.Feelings = append(report.Feelings, f)
		}
	}
	sort.SliceStable(report.Meals, func(i, j int) bool { return report.Meals[i].Date < report.Meals[j].Date })
	sort.SliceStable(report.Medicines, func(i, j int) bool { return report.Medicines[i].Date < report.Medicines[j].Date })
	sort.SliceStable(report.Stools, func(i, j int) bool { return report.Stools[i].Date < report.Stools[j].Date })
	sort.SliceStable(report.Feelings, func(i, j int) bool { return report.Feelings[i].Date < report.Feelings[j].Date })
	return report, nil
}
