package bot

import (
	"fmt"
	"strings"

	"github.com/poopstats/poopstats/internal/models"
)

// Callback data values used by the inline keyboards.
const (
	cbBackToMain          = "back_to_main"
	cbShowTimetable       = "show_timetable"
	cbBristol             = "bristol"
	cbManualMenu          = "manual_menu"
	cbShowToday           = "show_today"
	cbExportAll           = "export_all_stats"
	cbHelp                = "help"
	cbCancelDelete        = "cancel_delete"
	cbManualMedicine      = "manual_medicine"
	cbManualStool         = "manual_stool"
	cbManualFeeling       = "manual_feeling"
	cbSetTimePrefix       = "set_time_"
	cbManualMealPrefix    = "manual_meal_"
	cbConfirmDeletePrefix = "confirm_delete:"
)

const (
	msgStart = "👋 Привет! Я помогу отслеживать связь между питанием и стулом.\n" +
		"Используй кнопки ниже для настройки и ручного ввода."
	msgMainMenu  = "Главное меню:"
	msgCancelled = "✅ Ожидание отменено."
	msgHelp      = "📋 <b>Команды:</b>\n" +
		"/menu — меню\n" +
		"/cancel — отменить ввод\n\n" +
		"Остальное — через кнопки."
	msgHelpScreen = "📋 <b>Доступно:</b>\n" +
		"• Настройка времени\n" +
		"• Добавление событий\n" +
		"• Просмотр/редактирование/удаление\n" +
		"• Экспорт статистики"
	msgNotRegistered   = "❌ Ты не зарегистрирован. Напиши /start"
	msgManualMenu      = "➕ Добавить событие: выберите тип записи"
	msgMealDescPrompt  = "🍽️ Введите описание:"
	msgMedNamePrompt   = "💊 Введите название лекарства:"
	msgFeelingPrompt   = "😊 Опишите ваше самочувствие:"
	msgConfirmDelete   = "❓ Вы уверены, что хотите удалить эту запись?"
	msgDeleteCancelled = "Удаление отменено."
	msgDeleted         = "Удалено"
	msgDeleteNotFound  = "Не найдено / нет прав"
	msgBuildingReport  = "🔄 Формирую отчёт. Это может занять некоторое время."
	msgReportCaption   = "Ваша полная статистика"
	msgEditDescPrompt  = "Введите новое описание:"
	msgEditNamePrompt  = "Введите новое название:"
	msgEditStoolPrompt = "Введите новую оценку (0–7):"
)

// Reminder prompts per slot.
var mealPrompts = map[models.Slot]string{
	models.SlotBreakfast: "🍳 Что вы ели на завтрак?",
	models.SlotLunch:     "🍲 Что вы ели на обед?",
	models.SlotDinner:    "🍽️ Что вы ели на ужин?",
}

// Slot naming and examples for the time-setup prompt.
var slotNames = map[models.Slot]string{
	models.SlotBreakfast: "завтрака",
	models.SlotLunch:     "обеда",
	models.SlotDinner:    "ужина",
	models.SlotToilet:    "туалета",
}

var slotExamples = map[models.Slot]string{
	models.SlotBreakfast: models.DefaultBreakfastTime,
	models.SlotLunch:     models.DefaultLunchTime,
	models.SlotDinner:    models.DefaultDinnerTime,
	models.SlotToilet:    models.DefaultToiletTime,
}

// bristolPrompt builds the stool question with the full scale listing.
func bristolPrompt() string {
	lines := []string{"🚽 Оцените качество стула по Бристольской шкале:\n"}
	for k := models.BristolMin; k <= models.BristolMax; k++ {
		lines = append(lines, fmt.Sprintf("%d — %s", k, models.BristolDescription(k)))
	}
	lines = append(lines, "\nВведите цифру от 0 до 7:")
	return strings.Join(lines, "\n")
}

// bristolReference builds the scale reference screen.
func bristolReference() string {
	lines := []string{"📊 <b>Бристольская шкала:</b>"}
	for k := models.BristolMin; k <= models.BristolMax; k++ {
		lines = append(lines, fmt.Sprintf("%d — %s", k, models.BristolDescription(k)))
	}
	return strings.Join(lines, "\n")
}

func timetableText(sc *models.Schedule) string {
	return "⏰ <b>Твоё расписание:</b>\n" +
		fmt.Sprintf("Завтрак: %s\n", sc.BreakfastTime) +
		fmt.Sprintf("Обед:    %s\n", sc.LunchTime) +
		fmt.Sprintf("Ужин:    %s\n", sc.DinnerTime) +
		fmt.Sprintf("Туалет:  %s\n\n", sc.ToiletTime) +
		"Нажми кнопку, чтобы изменить время."
}

func setTimePrompt(slot models.Slot) string {
	return fmt.Sprintf("Введите время <b>%s</b> в формате ЧЧ:ММ (например, %s):",
		slotNames[slot], slotExamples[slot])
}
