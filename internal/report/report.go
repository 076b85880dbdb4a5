// Package report renders the daily summary and the full statistics export.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/poopstats/poopstats/internal/models"
	"github.com/poopstats/poopstats/internal/store"
)

// toDisplay converts a stored ISO date to the display format. Unparseable
// values are returned as-is.
func toDisplay(dateISO string) string {
	t, err := time.Parse(models.DateFormatStorage, dateISO)
	if err != nil {
		return dateISO
	}
	return t.Format(models.DateFormatDisplay)
}

var mealOrder = []struct {
	Type  models.MealType
	Title string
}{
	{models.MealBreakfast, "Завтрак"},
	{models.MealLunch, "Обед"},
	{models.MealDinner, "Ужин"},
	{models.MealSnack, "Перекусы"},
}

// DailySummary renders the user's entries for one day as an HTML message
// with edit/delete command hints per record.
func DailySummary(st store.Store, userID int64, dateISO string) (string, error) {
	meals, err := st.ListMealsForDay(userID, dateISO)
	if err != nil {
		return "", fmt.Errorf("daily summary meals: %w", err)
	}
	meds, err := st.ListMedicinesForDay(userID, dateISO)
	if err != nil {
		return "", fmt.Errorf("daily summary medicines: %w", err)
	}
	stools, err := st.ListStoolsForDay(userID, dateISO)
	if err != nil {
		return "", fmt.Errorf("daily summary stools: %w", err)
	}
	feelings, err := st.ListFeelingsForDay(userID, dateISO)
	if err != nil {
		return "", fmt.Errorf("daily summary feelings: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Записи за %s</b>\n\n", toDisplay(dateISO))

	if len(meals) == 0 && len(meds) == 0 && len(stools) == 0 && len(feelings) == 0 {
		b.WriteString("За сегодня записей нет.")
		return b.String(), nil
	}

	if len(meals) > 0 {
		b.WriteString("<b>Еда:</b>\n")
		for _, mo := range mealOrder {
			for _, m := range meals {
				if m.MealType != mo.Type {
					continue
				}
				fmt.Fprintf(&b, "- <b>%s</b>: %s\n(ред.: /edit_meal_%d)\n(удал.: /delete_meal_%d)\n\n",
					mo.Title, m.Description, m.ID, m.ID)
			}
		}
	}

	if len(meds) > 0 {
		b.WriteString("\n<b>Лекарства:</b>\n")
		for _, m := range meds {
			tail := ""
			if m.Dosage != nil && strings.TrimSpace(*m.Dosage) != "" {
				tail = fmt.Sprintf(" (%s)", strings.TrimSpace(*m.Dosage))
			}
			fmt.Fprintf(&b, "- %s%s\n(ред.: /edit_med_%d)\n(удал.: /delete_med_%d)\n\n",
				m.Name, tail, m.ID, m.ID)
		}
	}

	if len(stools) > 0 {
		b.WriteString("\n<b>Туалет:</b>\n")
		for _, s := range stools {
			fmt.Fprintf(&b, "- %d - %s\n(ред.: /edit_stool_%d)\n(удал.: /delete_stool_%d)\n\n",
				s.Quality, models.BristolDescription(s.Quality), s.ID, s.ID)
		}
	}

	if len(feelings) > 0 {
		b.WriteString("\n<b>Самочувствие:</b>\n")
		for _, f := range feelings {
			fmt.Fprintf(&b, "- %s\n(ред.: /edit_feeling_%d)\n(удал.: /delete_feeling_%d)\n\n",
				f.Description, f.ID, f.ID)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// SheetName is the single worksheet of the export workbook.
const SheetName = "Статистика"

// exportHeader lists the export columns, one row per day.
var exportHeader = []string{
	"Дата", "Завтрак", "Обед", "Ужин",
	"Количество перекусов", "Перекусы",
	"Количество лекарств", "Лекарства",
	"Количество походов в туалет", "Качество стула",
	"Самочувствие",
}

// GenerateXLSX builds the full per-day export of every entry of the user
// as an xlsx workbook.
func GenerateXLSX(st store.Store, userID int64) ([]byte, error) {
	data, err := st.FetchAllForReport(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch report data: %w", err)
	}

	dateSet := make(map[string]struct{})
	for _, m := range data.Meals {
		dateSet[m.Date] = struct{}{}
	}
	for _, m := range data.Medicines {
		dateSet[m.Date] = struct{}{}
	}
	for _, s := range data.Stools {
		dateSet[s.Date] = struct{}{}
	}
	for _, f := range data.Feelings {
		dateSet[f.Date] = struct{}{}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename export sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for i, d := range dates {
		var breakfast, lunch, dinner string
		var snacks, medsList, stoolList, feelingList []string

		for _, m := range data.Meals {
			if m.Date != d {
				continue
			}
			switch m.MealType {
			case models.MealBreakfast:
				breakfast = m.Description
			case models.MealLunch:
				lunch = m.Description
			case models.MealDinner:
				dinner = m.Description
			case models.MealSnack:
				snacks = append(snacks, m.Description)
			}
		}
		for _, m := range data.Medicines {
			if m.Date != d {
				continue
			}
			entry := m.Name
			if m.Dosage != nil && strings.TrimSpace(*m.Dosage) != "" {
				entry = entry + " " + strings.TrimSpace(*m.Dosage)
			}
			medsList = append(medsList, entry)
		}
		for _, s := range data.Stools {
			if s.Date != d {
				continue
			}
			stoolList = append(stoolList, fmt.Sprintf("%d — %s", s.Quality, models.BristolDescription(s.Quality)))
		}
		for _, f := range data.Feelings {
			if f.Date != d {
				continue
			}
			feelingList = append(feelingList, f.Description)
		}

		row := []string{
			toDisplay(d),
			breakfast,
			lunch,
			dinner,
			fmt.Sprintf("%d", len(snacks)),
			strings.Join(snacks, "; "),
			fmt.Sprintf("%d", len(medsList)),
			strings.Join(medsList, "; "),
			fmt.Sprintf("%d", len(stoolList)),
			strings.Join(stoolList, "; "),
			strings.Join(feelingList, "; "),
		}
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize export workbook: %w", err)
	}
	return buf.Bytes(), nil
}
