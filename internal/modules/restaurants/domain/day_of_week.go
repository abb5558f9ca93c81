package domain

import (
	"strings"

	"mesaOps/internal/shared/normalization"
)

// DayOfWeek is an opening day, stored with its portuguese short name.
type DayOfWeek string

const (
	Monday    DayOfWeek = "seg"
	Tuesday   DayOfWeek = "ter"
	Wednesday DayOfWeek = "qua"
	Thursday  DayOfWeek = "qui"
	Friday    DayOfWeek = "sex"
	Saturday  DayOfWeek = "sab"
	Sunday    DayOfWeek = "dom"
)

var allowedDays = map[string]DayOfWeek{
	"seg": Monday, "segunda": Monday, "monday": Monday, "mon": Monday,
	"ter": Tuesday, "terca": Tuesday, "tuesday": Tuesday, "tue": Tuesday,
	"qua": Wednesday, "quarta": Wednesday, "wednesday": Wednesday, "wed": Wednesday,
	"qui": Thursday, "quinta": Thursday, "thursday": Thursday, "thu": Thursday,
	"sex": Friday, "sexta": Friday, "friday": Friday, "fri": Friday,
	"sab": Saturday, "sabado": Saturday, "saturday": Saturday, "sat": Saturday,
	"dom": Sunday, "domingo": Sunday, "sunday": Sunday, "sun": Sunday,
}

// NormalizeDaysOpen converts arbitrary slice payloads into a canonical, duplicate-free day list.
func NormalizeDaysOpen(value any) []DayOfWeek {
	var items []any
	switch typed := value.(type) {
	case []string:
		for _, s := range typed {
			items = append(items, s)
		}
	case []DayOfWeek:
		for _, d := range typed {
			items = append(items, string(d))
		}
	default:
		items = normalization.AsInterfaceSlice(value)
	}
	if len(items) == 0 {
		return nil
	}

	seen := make(map[DayOfWeek]struct{}, len(items))
	var normalized []DayOfWeek
	for _, item := range items {
		day := normalizeDay(item)
		if day == "" {
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		normalized = append(normalized, day)
	}
	return normalized
}

func normalizeDay(value any) DayOfWeek {
	switch typed := value.(type) {
	case string:
		key := strings.ToLower(strings.TrimSpace(typed))
		key = strings.NewReplacer("ç", "c", "á", "a", "-feira", "").Replace(key)
		return allowedDays[key]
	default:
		return ""
	}
}
