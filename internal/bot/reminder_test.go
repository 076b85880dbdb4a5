package bot

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/poopstats/poopstats/internal/engine"
	"github.com/poopstats/poopstats/internal/models"
	"github.com/poopstats/poopstats/internal/scheduler"
	"github.com/poopstats/poopstats/internal/state"
	"github.com/poopstats/poopstats/internal/store"
)

func TestReminderForSeedsState(t *testing.T) {
	tests := []struct {
		slot         models.Slot
		wantStep     state.Step
		wantMealType models.MealType
		wantInPrompt string
	}{
		{models.SlotBreakfast, state.StepMeal, models.MealBreakfast, "завтрак"},
		{models.SlotLunch, state.StepMeal, models.MealLunch, "обед"},
		{models.SlotDinner, state.StepMeal, models.MealDinner, "ужин"},
		{models.SlotToilet, state.StepStool, "", "Бристольской"},
	}
	for _, tc := range tests {
		prompt, st := reminderFor(tc.slot, "2026-08-30")
		if !strings.Contains(prompt, tc.wantInPrompt) {
			t.Errorf("%s prompt %q missing %q", tc.slot, prompt, tc.wantInPrompt)
		}
		if st.Kind != state.KindPendingQuestion {
			t.Errorf("%s kind = %q", tc.slot, st.Kind)
		}
		if st.Step != tc.wantStep {
			t.Errorf("%s step = %q, want %q", tc.slot, st.Step, tc.wantStep)
		}
		if st.Draft.Date != "2026-08-30" {
			t.Errorf("%s date = %q", tc.slot, st.Draft.Date)
		}
		if st.Draft.MealType != tc.wantMealType {
			t.Errorf("%s meal type = %q, want %q", tc.slot, st.Draft.MealType, tc.wantMealType)
		}
	}
}

// The full reminder chain: a tick at the toilet time sends one prompt,
// records the gate, and seeds state; the user's reply lands as a stool
// entry; a repeated reply finds no state anymore.
func TestToiletReminderRoundTrip(t *testing.T) {
	const userID int64 = 1
	states := state.NewStore()
	st := store.NewInMemoryStore()
	if err := st.RegisterUser(userID); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	eng := engine.New(states, st, 1000)

	var prompts []string
	notify := func(id int64, slot models.Slot, date string) error {
		prompt, seeded := reminderFor(slot, date)
		prompts = append(prompts, prompt)
		states.Set(id, seeded)
		return nil
	}
	sched := scheduler.New(st, notify, time.UTC, time.Second)

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	sched.Tick(now)
	sched.Tick(now.Add(20 * time.Second))

	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], "Бристольской") {
		t.Errorf("unexpected prompt: %q", prompts[0])
	}
	if st.NotificationCount() != 1 {
		t.Errorf("got %d gate records, want 1", st.NotificationCount())
	}
	seeded, ok := states.Get(userID)
	if !ok {
		t.Fatal("no state seeded by the reminder")
	}
	if seeded.Kind != state.KindPendingQuestion || seeded.Step != state.StepStool {
		t.Fatalf("unexpected seeded state: %+v", seeded)
	}
	if seeded.Draft.Date != "2026-08-30" {
		t.Errorf("seeded date = %q", seeded.Draft.Date)
	}

	reply, err := eng.HandleText(userID, "4")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != engine.MsgSaved {
		t.Errorf("got %q, want %q", reply, engine.MsgSaved)
	}
	stools, _ := st.ListStoolsForDay(userID, "2026-08-30")
	if len(stools) != 1 || stools[0].Quality != 4 {
		t.Fatalf("unexpected stools: %+v", stools)
	}

	reply, err = eng.HandleText(userID, "4")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != engine.MsgNothingExpected {
		t.Errorf("got %q, want %q", reply, engine.MsgNothingExpected)
	}
	stools, _ = st.ListStoolsForDay(userID, "2026-08-30")
	if len(stools) != 1 {
		t.Errorf("repeated reply persisted: %+v", stools)
	}
}

// Callbacks on messages older than 48h arrive without a Message; the
// handler must drop them instead of panicking.
func TestCallbackWithoutMessageIgnored(t *testing.T) {
	b := &Bot{states: state.NewStore()}
	b.handleCallback(&tgbotapi.CallbackQuery{
		ID:   "stale",
		From: &tgbotapi.User{ID: 1},
		Data: cbShowToday,
	})
}

func TestMealReminderRoundTrip(t *testing.T) {
	const userID int64 = 1
	states := state.NewStore()
	st := store.NewInMemoryStore()
	if err := st.RegisterUser(userID); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	eng := engine.New(states, st, 1000)

	notify := func(id int64, slot models.Slot, date string) error {
		_, seeded := reminderFor(slot, date)
		states.Set(id, seeded)
		return nil
	}
	sched := scheduler.New(st, notify, time.UTC, time.Second)
	sched.Tick(time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC))

	seeded, ok := states.Get(userID)
	if !ok || seeded.Draft.MealType != models.MealBreakfast {
		t.Fatalf("unexpected seeded state: %+v", seeded)
	}

	reply, err := eng.HandleText(userID, "овсянка")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != engine.MsgSaved {
		t.Errorf("got %q, want %q", reply, engine.MsgSaved)
	}
	meals, _ := st.ListMealsForDay(userID, "2026-08-30")
	if len(meals) != 1 || meals[0].MealType != models.MealBreakfast || meals[0].Description != "овсянка" {
		t.Errorf("unexpected meals: %+v", meals)
	}
}
