package service

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

const (
	// FullDayHours is the leave total at which a date counts as a whole workday.
	FullDayHours = 8
	// HalfDayHours is the lower bound of a half-day leave label.
	HalfDayHours = 4

	dateLayout = "2006-01-02"
)

// MondayFirst is a grid column index: Monday = 0 ... Sunday = 6.
// Display names use time.Weekday (Sunday = 0) instead; the two never mix.
type MondayFirst int

// MondayWeekday converts the native Sunday-first weekday of t to a grid column.
func MondayWeekday(t time.Time) MondayFirst {
	return MondayFirst((int(t.Weekday()) + 6) % 7)
}

// IsWeekend reports whether the column is Saturday or Sunday.
func (d MondayFirst) IsWeekend() bool {
	return d >= 5
}

// DaysInMonth returns the Gregorian length of the month, or 0 for an invalid month.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func validYearMonth(year, month int) bool {
	return year >= 1000 && year <= 9999 && month >= 1 && month <= 12
}

// BuildGrid lays out the month as a fixed 6x7 Monday-first matrix and annotates each day
// with the leave records dated on it. Invalid input yields an all-padding grid.
func BuildGrid(year, month int, records []models.LeaveRecord) models.CalendarGrid {
	var grid models.CalendarGrid
	for i := 0; i < models.GridCells; i++ {
		col := i % models.GridColumns
		grid[i/models.GridColumns][col] = models.CalendarCell{
			IsWeekend: MondayFirst(col).IsWeekend(),
			Records:   []models.LeaveRecord{},
		}
	}
	if !validYearMonth(year, month) {
		return grid
	}

	byDay := groupRecordsByDay(year, month, records)
	daysInMonth := DaysInMonth(year, month)
	start := int(MondayWeekday(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)))

	day := 1
	for i := 0; i < models.GridCells; i++ {
		if i < start || day > daysInMonth {
			continue
		}
		cell := &grid[i/models.GridColumns][i%models.GridColumns]
		current := day
		cell.Day = &current
		if dayRecords, ok := byDay[current]; ok {
			cell.Records = dayRecords
		}
		class := ClassifyDay(cell.Records)
		cell.HasLeave = class.HasLeave
		cell.IsFullDay = class.IsFullDay
		cell.TotalHours = class.TotalHours
		day++
	}
	return grid
}

// ClassifyDay sums the hours of one day's records against the full-day threshold.
func ClassifyDay(records []models.LeaveRecord) models.DayClass {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(decimal.NewFromFloat(sanitizeHours(rec.Hours)))
	}
	hasLeave := len(records) > 0
	return models.DayClass{
		HasLeave:   hasLeave,
		TotalHours: total.InexactFloat64(),
		IsFullDay:  hasLeave && total.GreaterThanOrEqual(decimal.NewFromInt(FullDayHours)),
	}
}

func groupRecordsByDay(year, month int, records []models.LeaveRecord) map[int][]models.LeaveRecord {
	byDay := make(map[int][]models.LeaveRecord)
	for _, rec := range records {
		date, err := time.Parse(dateLayout, rec.Date)
		if err != nil || date.Year() != year || int(date.Month()) != month {
			continue
		}
		rec.Hours = sanitizeHours(rec.Hours)
		if rec.Category == "" {
			rec.Category = models.ClassifyLeaveType(rec.LeaveType)
		}
		if rec.Status == "" {
			rec.Status = models.LeaveStatusApproved
		}
		byDay[date.Day()] = append(byDay[date.Day()], rec)
	}
	return byDay
}

func sanitizeHours(hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return 0
	}
	return hours
}

// BuildDailySummary reshapes pre-grouped per-day aggregates into one entry per day of the
// month. today is the caller's current date; it only affects TodayCount.
func BuildDailySummary(year, month int, aggregates []models.DailyLeaveAggregate, today time.Time) models.DailyLeaveSummary {
	summary := models.DailyLeaveSummary{Days: []models.DayLeaveCount{}, MaxCount: 1}
	if !validYearMonth(year, month) {
		return summary
	}

	byDay := make(map[int][]models.DayLeaveEmployee)
	for _, agg := range aggregates {
		date, err := time.Parse(dateLayout, agg.Date)
		if err != nil || date.Year() != year || int(date.Month()) != month {
			continue
		}
		byDay[date.Day()] = append(byDay[date.Day()], agg.Employees...)
	}

	daysInMonth := DaysInMonth(year, month)
	days := make([]models.DayLeaveCount, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		employees := byDay[d]
		if employees == nil {
			employees = []models.DayLeaveEmployee{}
		}
		count := len(employees)
		if count > summary.MaxCount {
			summary.MaxCount = count
		}
		days = append(days, models.DayLeaveCount{
			Date:      time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC).Format(dateLayout),
			Count:     count,
			Employees: employees,
		})
	}
	for i := range days {
		days[i].Tier = HeatTier(days[i].Count, summary.MaxCount)
	}
	summary.Days = days

	if today.Year() == year && int(today.Month()) == month {
		summary.TodayCount = days[today.Day()-1].Count
	}
	return summary
}

// HeatTier buckets a day's headcount relative to the month's peak.
func HeatTier(count, maxCount int) models.HeatTier {
	if count <= 0 {
		return models.HeatTierNone
	}
	if maxCount < 1 {
		maxCount = 1
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio <= 0.25:
		return models.HeatTierLow
	case ratio <= 0.5:
		return models.HeatTierMid
	case ratio <= 0.75:
		return models.HeatTierHigh
	default:
		return models.HeatTierMax
	}
}
