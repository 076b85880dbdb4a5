package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/poopstats/poopstats/internal/models"
	"github.com/poopstats/poopstats/internal/store"
)

const (
	testUser int64 = 1
	testDate       = "2026-08-30"
)

func newSeededStore(t *testing.T) *store.InMemoryStore {
	t.Helper()
	st := store.NewInMemoryStore()
	if err := st.RegisterUser(testUser); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return st
}

func TestDailySummaryEmpty(t *testing.T) {
	st := newSeededStore(t)

	text, err := DailySummary(st, testUser, testDate)
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if !strings.Contains(text, "30.08.2026") {
		t.Errorf("missing display date: %q", text)
	}
	if !strings.Contains(text, "За сегодня записей нет.") {
		t.Errorf("missing empty marker: %q", text)
	}
}

func TestDailySummarySections(t *testing.T) {
	st := newSeededStore(t)
	dosage := "200 мг"
	if err := st.UpsertMeal(testUser, testDate, models.MealLunch, "суп"); err != nil {
		t.Fatalf("UpsertMeal: %v", err)
	}
	if err := st.AddMedicine(testUser, testDate, "Ибупрофен", &dosage); err != nil {
		t.Fatalf("AddMedicine: %v", err)
	}
	if err := st.AddStool(testUser, testDate, 4); err != nil {
		t.Fatalf("AddStool: %v", err)
	}
	if err := st.AddFeeling(testUser, testDate, "бодрость"); err != nil {
		t.Fatalf("AddFeeling: %v", err)
	}

	text, err := DailySummary(st, testUser, testDate)
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}

	for _, want := range []string{
		"<b>Обед</b>: суп",
		"Ибупрофен (200 мг)",
		models.BristolDescription(4),
		"бодрость",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	for _, want := range []string{
		"/edit_meal_", "/delete_meal_",
		"/edit_med_", "/delete_med_",
		"/edit_stool_", "/delete_stool_",
		"/edit_feeling_", "/delete_feeling_",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing command hint %q", want)
		}
	}
}

func TestDailySummarySkipsOtherDays(t *testing.T) {
	st := newSeededStore(t)
	if err := st.UpsertMeal(testUser, "2026-08-29", models.MealDinner, "вчерашний ужин"); err != nil {
		t.Fatalf("UpsertMeal: %v", err)
	}

	text, err := DailySummary(st, testUser, testDate)
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if strings.Contains(text, "вчерашний ужин") {
		t.Errorf("summary leaked another day: %q", text)
	}
}

// readSheet opens the generated workbook and returns the rows of the
// statistics sheet, padded back to the full column count (trailing empty
// cells are trimmed on read).
func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read sheet %q: %v", SheetName, err)
	}
	for i := range rows {
		for len(rows[i]) < len(exportHeader) {
			rows[i] = append(rows[i], "")
		}
	}
	return rows
}

func TestGenerateXLSX(t *testing.T) {
	st := newSeededStore(t)
	if err := st.UpsertMeal(testUser, testDate, models.MealBreakfast, "каша"); err != nil {
		t.Fatalf("UpsertMeal: %v", err)
	}
	if err := st.UpsertMeal(testUser, testDate, models.MealSnack, "яблоко"); err != nil {
		t.Fatalf("UpsertMeal: %v", err)
	}
	if err := st.UpsertMeal(testUser, testDate, models.MealSnack, "орехи"); err != nil {
		t.Fatalf("UpsertMeal: %v", err)
	}
	if err := st.AddMedicine(testUser, testDate, "Смекта", nil); err != nil {
		t.Fatalf("AddMedicine: %v", err)
	}
	if err := st.AddStool(testUser, testDate, 3); err != nil {
		t.Fatalf("AddStool: %v", err)
	}
	if err := st.AddFeeling(testUser, "2026-08-29", "усталость"); err != nil {
		t.Fatalf("AddFeeling: %v", err)
	}

	data, err := GenerateXLSX(st, testUser)
	if err != nil {
		t.Fatalf("GenerateXLSX: %v", err)
	}

	records := readSheet(t, data)
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2 days", len(records))
	}
	if records[0][0] != "Дата" {
		t.Errorf("unexpected header: %v", records[0])
	}

	// Days are sorted ascending.
	if records[1][0] != "29.08.2026" || records[2][0] != "30.08.2026" {
		t.Errorf("rows out of order: %q, %q", records[1][0], records[2][0])
	}

	today := records[2]
	if today[1] != "каша" {
		t.Errorf("breakfast = %q", today[1])
	}
	if today[4] != "2" || !strings.Contains(today[5], "яблоко") || !strings.Contains(today[5], "орехи") {
		t.Errorf("snacks = %q/%q", today[4], today[5])
	}
	if today[6] != "1" || today[7] != "Смекта" {
		t.Errorf("medicines = %q/%q", today[6], today[7])
	}
	if today[8] != "1" || !strings.Contains(today[9], models.BristolDescription(3)) {
		t.Errorf("stools = %q/%q", today[8], today[9])
	}

	yesterday := records[1]
	if yesterday[10] != "усталость" {
		t.Errorf("feelings = %q", yesterday[10])
	}
}

func TestGenerateXLSXEmpty(t *testing.T) {
	st := newSeededStore(t)

	data, err := GenerateXLSX(st, testUser)
	if err != nil {
		t.Fatalf("GenerateXLSX: %v", err)
	}
	records := readSheet(t, data)
	if len(records) != 1 {
		t.Errorf("got %d rows, want header only", len(records))
	}
}
