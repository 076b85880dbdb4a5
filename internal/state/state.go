// Package state tracks what input the bot currently expects from each user.
//
// A user has at most one UserState at a time. States are created by the
// scheduler (a pending question) or by a menu action (manual entry, editing,
// time setup), advanced by the conversation engine, and cleared on
// completion, cancellation or overwrite.
package state

import (
	"sync"

	"github.com/poopstats/poopstats/internal/models"
)

// Kind identifies which flow a user is in.
type Kind string

const (
	KindAwaitingTime    Kind = "awaiting_time"
	KindPendingQuestion Kind = "pending_question"
	KindManual          Kind = "manual"
	KindEdit            Kind = "edit"
)

// Step is the kind-specific sub-stage within a flow.
type Step string

const (
	StepTime         Step = "time"
	StepMeal         Step = "meal"
	StepStool        Step = "stool"
	StepMealDesc     Step = "meal_desc"
	StepMedName      Step = "med_name"
	StepMedDosage    Step = "med_dosage"
	StepStoolQuality Step = "stool_quality"
	StepFeelingDesc  Step = "feeling_desc"
)

// Draft carries the fields accumulated so far in a flow. Only the fields
// relevant to the current (kind, step) pair are set.
type Draft struct {
	Slot     models.Slot     // awaiting_time: which reminder time is being set
	Date     string          // ISO date the entry belongs to
	MealType models.MealType // meal flows
	RecordID int64           // edit flows: id of the record being changed
	Name     string          // medicine flows: name captured at med_name
}

// UserState describes the input currently expected from one user.
type UserState struct {
	Kind  Kind
	Step  Step
	Draft Draft
}

// Store is a concurrency-safe keyed store of per-user conversation states.
// Both the inbound-message path and the scheduler mutate it, so every
// operation takes the lock; multi-step sequencing is the engine's concern.
type Store struct {
	mu     sync.RWMutex
	states map[int64]UserState
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{states: make(map[int64]UserState)}
}

// Get returns the user's current state, if any.
func (s *Store) Get(userID int64) (UserState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return st, ok
}

// Set replaces the user's current state.
func (s *Store) Set(userID int64, st UserState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

// Clear removes the user's state. Clearing an absent state is a no-op.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
