// Package engine implements the conversation state machine.
//
// The engine interprets each inbound text message against the sender's
// current state, validates it, performs the corresponding repository calls,
// advances or clears the state, and returns the reply text. It never talks
// to the transport layer: sending the reply (and any keyboards) is the bot
// layer's concern.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poopstats/poopstats/internal/state"
	"github.com/poopstats/poopstats/internal/store"
)

// Engine drives per-user conversations over the state store and repository.
type Engine struct {
	states    *state.Store
	store     store.Store
	maxLength int
}

// New creates an engine. maxLength bounds accepted free-text input.
func New(states *state.Store, st store.Store, maxLength int) *Engine {
	return &Engine{states: states, store: st, maxLength: maxLength}
}

// HandleText processes one inbound message from a user and returns the reply.
//
// Validation failures keep the current state untouched so the same step can
// be retried. Persistence failures also keep the state and return a non-nil
// error alongside the failure reply; the interaction is never confirmed as
// successful in that case.
func (e *Engine) HandleText(userID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	st, ok := e.states.Get(userID)
	if !ok {
		return MsgNothingExpected, nil
	}

	switch st.Kind {
	case state.KindAwaitingTime:
		return e.handleAwaitingTime(userID, st, text)
	case state.KindPendingQuestion:
		return e.handlePendingQuestion(userID, st, text)
	case state.KindManual:
		return e.handleManual(userID, st, text)
	case state.KindEdit:
		return e.handleEdit(userID, st, text)
	}

	// Unknown kind should not happen; drop the state so the user is not stuck.
	slog.Error("Engine: unknown state kind", "userID", userID, "kind", st.Kind)
	e.states.Clear(userID)
	return MsgNothingExpected, nil
}

func (e *Engine) handleAwaitingTime(userID int64, st state.UserState, text string) (string, error) {
	hhmm, ok := ParseTimeHHMM(text)
	if !ok {
		return MsgBadTimeFormat, nil
	}
	updated, err := e.store.UpdateScheduleTime(userID, st.Draft.Slot, hhmm)
	if err != nil {
		return MsgStoreFailed, fmt.Errorf("update %s time: %w", st.Draft.Slot, err)
	}
	e.states.Clear(userID)
	if !updated {
		return MsgTimeSaveFailed, nil
	}
	return MsgTimeSaved, nil
}

func (e *Engine) handlePendingQuestion(userID int64, st state.UserState, text string) (string, error) {
	switch st.Step {
	case state.StepMeal:
		desc, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		if err := e.store.UpsertMeal(userID, st.Draft.Date, st.Draft.MealType, desc); err != nil {
			return MsgStoreFailed, fmt.Errorf("upsert meal: %w", err)
		}
		e.states.Clear(userID)
		return MsgSaved, nil

	case state.StepStool:
		q, err := ValidateStoolQuality(text)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		if err := e.store.AddStool(userID, st.Draft.Date, q); err != nil {
			return MsgStoreFailed, fmt.Errorf("add stool: %w", err)
		}
		e.states.Clear(userID)
		return MsgSaved, nil
	}
	return e.dropUnknownStep(userID, st)
}

func (e *Engine) handleManual(userID int64, st state.UserState, text string) (string, error) {
	switch st.Step {
	case state.StepMealDesc:
		desc, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		if err := e.store.UpsertMeal(userID, st.Draft.Date, st.Draft.MealType, desc); err != nil {
			return MsgStoreFailed, fmt.Errorf("upsert meal: %w", err)
		}
		e.states.Clear(userID)
		return MsgEntrySaved, nil

	case state.StepMedName:
		name, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		st.Step = state.StepMedDosage
		st.Draft.Name = name
		e.states.Set(userID, st)
		return MsgAskDosage, nil

	case state.StepMedDosage:
		dosage, err := e.parseDosage(text)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		if err := e.store.AddMedicine(userID, st.Draft.Date, st.Draft.Name, dosage); err != nil {
			return MsgStoreFailed, fmt.Errorf("add medicine: %w", err)
		}
		e.states.Clear(userID)
		return MsgMedicineAdded, nil

	case state.StepStoolQuality:
		q, err := ValidateStoolQuality(text)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		if err := e.store.AddStool(userID, st.Draft.Date, q); err != nil {
			return MsgStoreFailed, fmt.Errorf("add stool: %w", err)
		}
		e.states.Clear(userID)
		return MsgEntrySaved, nil

	case state.StepFeelingDesc:
		desc, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		if err := e.store.AddFeeling(userID, st.Draft.Date, desc); err != nil {
			return MsgStoreFailed, fmt.Errorf("add feeling: %w", err)
		}
		e.states.Clear(userID)
		return MsgEntrySaved, nil
	}
	return e.dropUnknownStep(userID, st)
}

func (e *Engine) handleEdit(userID int64, st state.UserState, text string) (string, error) {
	switch st.Step {
	case state.StepMealDesc:
		desc, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		updated, err := e.store.UpdateMeal(userID, st.Draft.RecordID, desc)
		if err != nil {
			return MsgStoreFailed, fmt.Errorf("update meal: %w", err)
		}
		return e.finishEdit(userID, updated)

	case state.StepMedName:
		name, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		st.Step = state.StepMedDosage
		st.Draft.Name = name
		e.states.Set(userID, st)
		return MsgAskNewDosage, nil

	case state.StepMedDosage:
		dosage, err := e.parseDosage(text)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		updated, err := e.store.UpdateMedicine(userID, st.Draft.RecordID, st.Draft.Name, dosage)
		if err != nil {
			return MsgStoreFailed, fmt.Errorf("update medicine: %w", err)
		}
		return e.finishEdit(userID, updated)

	case state.StepStoolQuality:
		q, err := ValidateStoolQuality(text)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		updated, err := e.store.UpdateStool(userID, st.Draft.RecordID, q)
		if err != nil {
			return MsgStoreFailed, fmt.Errorf("update stool: %w", err)
		}
		return e.finishEdit(userID, updated)

	case state.StepFeelingDesc:
		desc, err := ValidateText(text, e.maxLength)
		if err != nil {
			return "❌ " + err.Error(), nil
		}
		updated, err := e.store.UpdateFeeling(userID, st.Draft.RecordID, desc)
		if err != nil {
			return MsgStoreFailed, fmt.Errorf("update feeling: %w", err)
		}
		return e.finishEdit(userID, updated)
	}
	return e.dropUnknownStep(userID, st)
}

// finishEdit clears the state: whether or not the row existed, no further
// step is meaningful. "Not found" and "not yours" are deliberately
// indistinguishable.
func (e *Engine) finishEdit(userID int64, updated bool) (string, error) {
	e.states.Clear(userID)
	if !updated {
		return MsgNotFound, nil
	}
	return MsgUpdated, nil
}

// parseDosage maps the skip token to "no dosage" and validates anything else.
func (e *Engine) parseDosage(text string) (*string, error) {
	if text == DosageSkipToken {
		return nil, nil
	}
	dosage, err := ValidateText(text, e.maxLength)
	if err != nil {
		return nil, err
	}
	return &dosage, nil
}

func (e *Engine) dropUnknownStep(userID int64, st state.UserState) (string, error) {
	slog.Error("Engine: unknown step for kind", "userID", userID, "kind", st.Kind, "step", st.Step)
	e.states.Clear(userID)
	return MsgNothingExpected, nil
}
