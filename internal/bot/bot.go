// Package bot implements the Telegram transport: long-polling update loop,
// command and callback routing, and reminder delivery.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/poopstats/poopstats/internal/engine"
	"github.com/poopstats/poopstats/internal/models"
	"github.com/poopstats/poopstats/internal/state"
	"github.com/poopstats/poopstats/internal/store"
)

// Bot wires the Telegram API to the conversation engine and the store.
type Bot struct {
	api    *tgbotapi.BotAPI
	store  store.Store
	states *state.Store
	engine *engine.Engine
	loc    *time.Location
}

// New authorizes against the Telegram API and returns a ready bot.
func New(token string, st store.Store, states *state.Store, eng *engine.Engine, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	slog.Info("Authorized on Telegram", "account", api.Self.UserName)
	return &Bot{
		api:    api,
		store:  st,
		states: states,
		engine: eng,
		loc:    loc,
	}, nil
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(update.Message)
	}
}

// reminderFor returns the prompt text for a slot and the pending-question
// state it seeds, so the next text reply lands in the right place.
func reminderFor(slot models.Slot, date string) (string, state.UserState) {
	if slot == models.SlotToilet {
		return bristolPrompt(), state.UserState{
			Kind:  state.KindPendingQuestion,
			Step:  state.StepStool,
			Draft: state.Draft{Date: date},
		}
	}
	return mealPrompts[slot], state.UserState{
		Kind:  state.KindPendingQuestion,
		Step:  state.StepMeal,
		Draft: state.Draft{Date: date, MealType: models.MealType(slot)},
	}
}

// Notify delivers the scheduled reminder for a slot. State is seeded only
// after a successful send.
func (b *Bot) Notify(userID int64, slot models.Slot, date string) error {
	prompt, st := reminderFor(slot, date)
	msg := tgbotapi.NewMessage(userID, prompt)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	b.states.Set(userID, st)
	return nil
}

func (b *Bot) handleText(m *tgbotapi.Message) {
	userID := m.From.ID
	reply, err := b.engine.HandleText(userID, m.Text)
	if err != nil {
		slog.Error("Text handling failed", "userID", userID, "error", err)
	}
	msg := tgbotapi.NewMessage(m.Chat.ID, reply)
	if _, hasState := b.states.Get(userID); !hasState {
		msg.ReplyMarkup = mainMenu()
	}
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Failed to send reply", "userID", userID, "error", err)
	}
}

func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Failed to send message", "chatID", chatID, "error", err)
	}
}

// edit rewrites the message the callback came from. Telegram rejects edits
// that change nothing, which is harmless here.
func (b *Bot) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		slog.Error("Failed to edit message", "chatID", chatID, "error", err)
	}
}

func (b *Bot) today() string {
	return time.Now().In(b.loc).Format(models.DateFormatStorage)
}
