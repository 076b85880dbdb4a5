package bot

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/poopstats/poopstats/internal/engine"
	"github.com/poopstats/poopstats/internal/models"
	"github.com/poopstats/poopstats/internal/report"
	"github.com/poopstats/poopstats/internal/state"
)

var (
	editCmdRe   = regexp.MustCompile(`^edit_(meal|med|stool|feeling)_(\d+)$`)
	deleteCmdRe = regexp.MustCompile(`^delete_(meal|med|stool|feeling)_(\d+)$`)
)

func (b *Bot) handleCommand(m *tgbotapi.Message) {
	userID := m.From.ID
	chatID := m.Chat.ID

	switch cmd := m.Command(); cmd {
	case "start":
		if err := b.store.RegisterUser(userID); err != nil {
			slog.Error("Failed to register user", "userID", userID, "error", err)
			b.send(chatID, engine.MsgStoreFailed, nil)
			return
		}
		kb := mainMenu()
		b.send(chatID, msgStart, &kb)
	case "menu":
		kb := mainMenu()
		b.send(chatID, msgMainMenu, &kb)
	case "cancel":
		b.states.Clear(userID)
		b.send(chatID, msgCancelled, nil)
	case "help":
		b.send(chatID, msgHelp, nil)
	default:
		if match := editCmdRe.FindStringSubmatch(cmd); match != nil {
			b.startEdit(chatID, userID, match[1], match[2])
			return
		}
		if match := deleteCmdRe.FindStringSubmatch(cmd); match != nil {
			kb := confirmDelete(match[1], mustID(match[2]))
			b.send(chatID, msgConfirmDelete, &kb)
			return
		}
	}
}

// startEdit seeds the edit conversation for an existing record.
func (b *Bot) startEdit(chatID, userID int64, kind, rawID string) {
	id := mustID(rawID)
	st := state.UserState{Kind: state.KindEdit, Draft: state.Draft{RecordID: id}}

	var prompt string
	switch kind {
	case "meal":
		st.Step = state.StepMealDesc
		prompt = msgEditDescPrompt
	case "med":
		st.Step = state.StepMedName
		prompt = msgEditNamePrompt
	case "stool":
		st.Step = state.StepStoolQuality
		prompt = msgEditStoolPrompt
	case "feeling":
		st.Step = state.StepFeelingDesc
		prompt = msgEditDescPrompt
	}
	b.states.Set(userID, st)
	b.send(chatID, prompt, nil)
}

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	// Telegram omits Message for callbacks on messages older than 48h.
	if q.Message == nil {
		return
	}
	userID := q.From.ID
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID
	data := q.Data

	// Always answer to stop the client spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		slog.Debug("Failed to answer callback", "userID", userID, "error", err)
	}

	switch {
	case data == cbBackToMain:
		b.states.Clear(userID)
		kb := mainMenu()
		b.edit(chatID, messageID, msgMainMenu, &kb)

	case data == cbShowTimetable:
		b.showTimetable(chatID, messageID, userID)

	case strings.HasPrefix(data, cbSetTimePrefix):
		slot := models.Slot(strings.TrimPrefix(data, cbSetTimePrefix))
		if !slot.IsValid() {
			return
		}
		b.states.Set(userID, state.UserState{
			Kind:  state.KindAwaitingTime,
			Step:  state.StepTime,
			Draft: state.Draft{Slot: slot},
		})
		kb := backToMain()
		b.edit(chatID, messageID, setTimePrompt(slot), &kb)

	case data == cbManualMenu:
		kb := manualMenu()
		b.edit(chatID, messageID, msgManualMenu, &kb)

	case strings.HasPrefix(data, cbManualMealPrefix):
		mealType := models.MealType(strings.TrimPrefix(data, cbManualMealPrefix))
		if !mealType.IsValid() {
			return
		}
		b.states.Set(userID, state.UserState{
			Kind:  state.KindManual,
			Step:  state.StepMealDesc,
			Draft: state.Draft{Date: b.today(), MealType: mealType},
		})
		b.edit(chatID, messageID, msgMealDescPrompt, nil)

	case data == cbManualMedicine:
		b.states.Set(userID, state.UserState{
			Kind:  state.KindManual,
			Step:  state.StepMedName,
			Draft: state.Draft{Date: b.today()},
		})
		b.edit(chatID, messageID, msgMedNamePrompt, nil)

	case data == cbManualStool:
		b.states.Set(userID, state.UserState{
			Kind:  state.KindManual,
			Step:  state.StepStoolQuality,
			Draft: state.Draft{Date: b.today()},
		})
		b.edit(chatID, messageID, bristolPrompt(), nil)

	case data == cbManualFeeling:
		b.states.Set(userID, state.UserState{
			Kind:  state.KindManual,
			Step:  state.StepFeelingDesc,
			Draft: state.Draft{Date: b.today()},
		})
		b.edit(chatID, messageID, msgFeelingPrompt, nil)

	case data == cbShowToday:
		b.showToday(chatID, messageID, userID)

	case data == cbBristol:
		kb := backToMain()
		b.edit(chatID, messageID, bristolReference(), &kb)

	case data == cbHelp:
		kb := backToMain()
		b.edit(chatID, messageID, msgHelpScreen, &kb)

	case data == cbCancelDelete:
		b.edit(chatID, messageID, msgDeleteCancelled, nil)

	case strings.HasPrefix(data, cbConfirmDeletePrefix):
		b.confirmDeleteRecord(chatID, messageID, userID, strings.TrimPrefix(data, cbConfirmDeletePrefix))

	case data == cbExportAll:
		b.edit(chatID, messageID, msgBuildingReport, nil)
		go b.exportAll(chatID, userID)
	}
}

func (b *Bot) showTimetable(chatID int64, messageID int, userID int64) {
	sc, err := b.store.GetSchedule(userID)
	if err != nil {
		slog.Error("Failed to load schedule", "userID", userID, "error", err)
		return
	}
	if sc == nil {
		b.edit(chatID, messageID, msgNotRegistered, nil)
		return
	}
	kb := editTimetableMenu()
	b.edit(chatID, messageID, timetableText(sc), &kb)
}

func (b *Bot) showToday(chatID int64, messageID int, userID int64) {
	text, err := report.DailySummary(b.store, userID, b.today())
	if err != nil {
		slog.Error("Failed to build daily summary", "userID", userID, "error", err)
		return
	}
	kb := backToMain()
	b.edit(chatID, messageID, text, &kb)
}

// confirmDeleteRecord handles "confirm_delete:<kind>:<id>".
func (b *Bot) confirmDeleteRecord(chatID int64, messageID int, userID int64, payload string) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return
	}

	var deleted bool
	switch parts[0] {
	case "meal":
		deleted, err = b.store.DeleteMeal(userID, id)
	case "med":
		deleted, err = b.store.DeleteMedicine(userID, id)
	case "stool":
		deleted, err = b.store.DeleteStool(userID, id)
	case "feeling":
		deleted, err = b.store.DeleteFeeling(userID, id)
	default:
		return
	}
	if err != nil {
		slog.Error("Failed to delete record", "userID", userID, "kind", parts[0], "id", id, "error", err)
		return
	}

	result := "✅ " + msgDeleted
	if !deleted {
		result = "❌ " + msgDeleteNotFound
	}
	b.edit(chatID, messageID, result, nil)

	text, err := report.DailySummary(b.store, userID, b.today())
	if err != nil {
		slog.Error("Failed to refresh daily summary", "userID", userID, "error", err)
		return
	}
	kb := backToMain()
	b.send(chatID, text, &kb)
}

func (b *Bot) exportAll(chatID, userID int64) {
	data, err := report.GenerateXLSX(b.store, userID)
	if err != nil {
		slog.Error("Failed to build export", "userID", userID, "error", err)
		b.send(chatID, "❌ Ошибка при сборе статистики.", nil)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "statistics.xlsx",
		Bytes: data,
	})
	doc.Caption = msgReportCaption
	if _, err := b.api.Send(doc); err != nil {
		slog.Error("Failed to send export", "userID", userID, "error", err)
	}
}

func mustID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
