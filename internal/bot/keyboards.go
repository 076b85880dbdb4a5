package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Расписание", cbShowTimetable),
			tgbotapi.NewInlineKeyboardButtonData("📊 Бристольская шкала", cbBristol),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить событие", cbManualMenu),
			tgbotapi.NewInlineKeyboardButtonData("📋 Дневная статистика", cbShowToday),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Полная статистика", cbExportAll),
			tgbotapi.NewInlineKeyboardButtonData("❓ Помощь", cbHelp),
		),
	)
}

func backToMain() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀ Назад", cbBackToMain),
		),
	)
}

func editTimetableMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍳 Завтрак", cbSetTimePrefix+"breakfast"),
			tgbotapi.NewInlineKeyboardButtonData("🍲 Обед", cbSetTimePrefix+"lunch"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Ужин", cbSetTimePrefix+"dinner"),
			tgbotapi.NewInlineKeyboardButtonData("🚽 Туалет", cbSetTimePrefix+"toilet"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀ Назад", cbBackToMain),
		),
	)
}

func manualMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍳 Завтрак", cbManualMealPrefix+"breakfast"),
			tgbotapi.NewInlineKeyboardButtonData("🍲 Обед", cbManualMealPrefix+"lunch"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Ужин", cbManualMealPrefix+"dinner"),
			tgbotapi.NewInlineKeyboardButtonData("🍪 Перекус", cbManualMealPrefix+"snack"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💊 Лекарство", cbManualMedicine),
			tgbotapi.NewInlineKeyboardButtonData("🚽 Туалет", cbManualStool),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😊 Самочувствие", cbManualFeeling),
			tgbotapi.NewInlineKeyboardButtonData("◀ Назад", cbBackToMain),
		),
	)
}

func confirmDelete(itemType string, itemID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, удалить",
				fmt.Sprintf("%s%s:%d", cbConfirmDeletePrefix, itemType, itemID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет", cbCancelDelete),
		),
	)
}
