package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/poopstats/poopstats/internal/models"
)

// ValidateText trims the input and rejects empty or over-length text.
func ValidateText(value string, maxLength int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("Пустой текст")
	}
	if len([]rune(v)) > maxLength {
		return "", fmt.Errorf("Слишком длинный текст (>%d символов)", maxLength)
	}
	return v, nil
}

// ParseTimeHHMM parses a 24-hour "HH:MM" string. The returned value is
// normalized to two-digit fields so it compares equal to the scheduler's
// clock formatting.
func ParseTimeHHMM(value string) (string, bool) {
	t, err := time.Parse(models.TimeFormatHHMM, strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	return t.Format(models.TimeFormatHHMM), true
}

// ValidateStoolQuality parses a Bristol scale value: a base-10 integer
// within [0, 7].
func ValidateStoolQuality(value string) (int, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("Введите число от 0 до 7.")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("Введите число от 0 до 7.")
		}
	}
	q, err := strconv.Atoi(s)
	if err != nil || q < models.BristolMin || q > models.BristolMax {
		return 0, fmt.Errorf("Введите число от 0 до 7.")
	}
	return q, nil
}
