package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// weekdayNames is indexed by time.Weekday, Sunday first.
var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// FormatDuration labels a leave duration in hours. The tier is chosen from the printed value.
func FormatDuration(hours float64) string {
	rounded := decimal.NewFromFloat(sanitizeHours(hours)).Round(1)
	label := rounded.String()
	hours, _ = rounded.Float64()
	switch {
	case hours >= FullDayHours:
		return fmt.Sprintf("full day · %s hours", label)
	case hours >= HalfDayHours:
		return fmt.Sprintf("half day · %s hours", label)
	default:
		return fmt.Sprintf("%s hours", label)
	}
}

// FormatDateWithWeekday renders a date followed by its weekday name.
func FormatDateWithWeekday(date time.Time) string {
	return date.Format(dateLayout) + " " + weekdayNames[date.Weekday()]
}

// FormatDateLabel is FormatDateWithWeekday for YYYY-MM-DD strings; unparseable input is returned as is.
func FormatDateLabel(raw string) string {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return raw
	}
	return FormatDateWithWeekday(date)
}

