package engine

// User-facing replies produced by the engine.
const (
	MsgNothingExpected = "Я не ожидаю ввода. Используй /menu."
	MsgBadTimeFormat   = "❌ Неверный формат. Введите время ЧЧ:ММ."
	MsgTimeSaved       = "✅ Время сохранено."
	MsgTimeSaveFailed  = "❌ Ошибка сохранения."
	MsgSaved           = "✅ Сохранено."
	MsgEntrySaved      = "✅ Запись сохранена."
	MsgMedicineAdded   = "✅ Лекарство добавлено."
	MsgUpdated         = "✅ Обновлено."
	MsgNotFound        = "❌ Не найдено / нет прав."
	MsgStoreFailed     = "❌ Не удалось сохранить. Попробуйте ещё раз."
	MsgAskDosage       = "Введите дозировку (или «-» чтобы пропустить):"
	MsgAskNewDosage    = "Введите новую дозировку (или «-»):"
)

// DosageSkipToken is the literal input that records a medicine without dosage.
const DosageSkipToken = "-"
