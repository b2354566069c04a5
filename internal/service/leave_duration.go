package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

const (
	defaultHoursInPerDay = 800
	defaultDayStart      = "09:00"
	defaultDayEnd        = "18:00"
	clockLayout          = "15:04"
)

// ConvertDuration converts a DingTalk duration (value x100) into hours or standard 8h days.
// hoursInPerDay is the leave type's working day length x100; zero means 8 hours.
func ConvertDuration(percent int64, unit models.DurationUnit, target models.SummaryUnit, hoursInPerDay int64) decimal.Decimal {
	if percent <= 0 {
		return decimal.Zero
	}
	raw := decimal.New(percent, -2)
	hours := raw
	if unit != models.DurationPercentHour {
		if hoursInPerDay <= 0 {
			hoursInPerDay = defaultHoursInPerDay
		}
		hours = raw.Mul(decimal.New(hoursInPerDay, -2))
	}
	if target == models.UnitHour {
		return hours
	}
	return hours.Div(decimal.NewFromInt(FullDayHours))
}

// WorkdayCalendar decides which dates are working days: Monday to Friday, minus configured
// holidays, plus configured make-up workdays.
type WorkdayCalendar struct {
	holidays map[string]struct{}
	extra    map[string]struct{}
}

// NewWorkdayCalendar builds a calendar from holiday and make-up workday lists.
func NewWorkdayCalendar(holidays, extraWorkdays []time.Time) *WorkdayCalendar {
	cal := &WorkdayCalendar{
		holidays: make(map[string]struct{}, len(holidays)),
		extra:    make(map[string]struct{}, len(extraWorkdays)),
	}
	for _, d := range holidays {
		cal.holidays[d.Format(dateLayout)] = struct{}{}
	}
	for _, d := range extraWorkdays {
		cal.extra[d.Format(dateLayout)] = struct{}{}
	}
	return cal
}

// IsWorkday reports whether the calendar date of day is a working day.
func (c *WorkdayCalendar) IsWorkday(day time.Time) bool {
	if c != nil {
		key := day.Format(dateLayout)
		if _, ok := c.extra[key]; ok {
			return true
		}
		if _, ok := c.holidays[key]; ok {
			return false
		}
	}
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// DateWindow is an inclusive range of calendar dates.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// MonthWindow covers every date of the month in loc.
func MonthWindow(year, month int, loc *time.Location) DateWindow {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return DateWindow{From: from, To: from.AddDate(0, 1, -1)}
}

// YearWindow covers every date of the year in loc.
func YearWindow(year int, loc *time.Location) DateWindow {
	return DateWindow{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		To:   time.Date(year, time.December, 31, 0, 0, 0, 0, loc),
	}
}

// Bounds returns the window as inclusive Unix millisecond instants.
func (w DateWindow) Bounds() (int64, int64) {
	end := w.To.AddDate(0, 0, 1).Add(-time.Millisecond)
	return w.From.UnixMilli(), end.UnixMilli()
}

func (w DateWindow) contains(day time.Time) bool {
	return !day.Before(w.From) && !day.After(w.To)
}

// LeaveRules applies the organisation's calendar and leave type settings to raw records.
type LeaveRules struct {
	calendar     *WorkdayCalendar
	loc          *time.Location
	typeHours    map[string]int64
	workdaysOnly bool
}

// NewLeaveRules constructs rules evaluated in loc; nil loc means UTC.
func NewLeaveRules(calendar *WorkdayCalendar, loc *time.Location) LeaveRules {
	if loc == nil {
		loc = time.UTC
	}
	return LeaveRules{calendar: calendar, loc: loc, typeHours: map[string]int64{}}
}

// WithTypes returns a copy of the rules that knows each leave type's day length.
func (r LeaveRules) WithTypes(types []models.LeaveType) LeaveRules {
	hours := make(map[string]int64, len(types))
	for _, t := range types {
		hours[t.Code] = t.HoursInPerDay
	}
	r.typeHours = hours
	return r
}

// WorkdaysOnly returns a copy of the rules in which no leave category counts natural days.
// The per-employee and per-day calendars use it; yearly analytics keep natural-day categories.
func (r LeaveRules) WorkdaysOnly() LeaveRules {
	r.workdaysOnly = true
	return r
}

// Location returns the zone dates are evaluated in.
func (r LeaveRules) Location() *time.Location {
	return r.loc
}

// Value converts the record's duration into the requested unit.
func (r LeaveRules) Value(rec models.LeaveRecordRow, unit models.SummaryUnit) decimal.Decimal {
	hpd := int64(defaultHoursInPerDay)
	if rec.LeaveCode != nil {
		if v, ok := r.typeHours[*rec.LeaveCode]; ok && v > 0 {
			hpd = v
		}
	}
	return ConvertDuration(rec.DurationPercent, rec.DurationUnit, unit, hpd)
}

// Date returns the calendar date of a Unix millisecond instant.
func (r LeaveRules) Date(ms int64) time.Time {
	return truncateDay(time.UnixMilli(ms).In(r.loc))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// counts reports whether a date of the record contributes to its duration.
func (r LeaveRules) counts(kind models.LeaveKind, day time.Time) bool {
	return (!r.workdaysOnly && kind.CountsNaturalDays()) || r.calendar.IsWorkday(day)
}

func (r LeaveRules) span(rec models.LeaveRecordRow) (time.Time, time.Time) {
	start := r.Date(rec.StartTime)
	end := r.Date(rec.EndTime)
	if end.Before(start) {
		end = start
	}
	return start, end
}

// CountedDays lists the dates of the record inside window that contribute to its duration.
func (r LeaveRules) CountedDays(rec models.LeaveRecordRow, window DateWindow) []time.Time {
	kind := models.ClassifyLeaveType(rec.TypeName())
	start, end := r.span(rec)
	if start.Before(window.From) {
		start = window.From
	}
	if end.After(window.To) {
		end = window.To
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if r.counts(kind, d) {
			days = append(days, d)
		}
	}
	return days
}

func (r LeaveRules) totalCountedDays(rec models.LeaveRecordRow) int {
	start, end := r.span(rec)
	return len(r.CountedDays(rec, DateWindow{From: start, To: end}))
}

// Expand splits a record into per-date entries inside window. The first date keeps the real
// start time and the last date the real end time; hours are shared evenly across counted dates.
func (r LeaveRules) Expand(rec models.LeaveRecordRow, window DateWindow) []models.LeaveRecord {
	startAt := time.UnixMilli(rec.StartTime).In(r.loc)
	endAt := time.UnixMilli(rec.EndTime).In(r.loc)
	start, end := r.span(rec)

	hours := r.Value(rec, models.UnitHour)
	if total := r.totalCountedDays(rec); total > 0 {
		hours = hours.Div(decimal.NewFromInt(int64(total)))
	}
	perDay := hours.Round(1).InexactFloat64()

	status := models.LeaveStatusApproved
	if rec.Status != nil {
		status = models.ParseLeaveStatus(*rec.Status)
	}
	typeName := rec.TypeName()
	kind := models.ClassifyLeaveType(typeName)

	days := r.CountedDays(rec, window)
	out := make([]models.LeaveRecord, 0, len(days))
	for _, d := range days {
		entry := models.LeaveRecord{
			Date:      d.Format(dateLayout),
			StartTime: defaultDayStart,
			EndTime:   defaultDayEnd,
			Hours:     perDay,
			LeaveType: typeName,
			Category:  kind,
			Status:    status,
		}
		if d.Equal(start) {
			entry.StartTime = startAt.Format(clockLayout)
		}
		if d.Equal(end) {
			entry.EndTime = endAt.Format(clockLayout)
		}
		out = append(out, entry)
	}
	return out
}

// Prorate returns the share of the record's duration falling inside window. A record with no
// counted dates at all is attributed wholly to the window holding its start date.
func (r LeaveRules) Prorate(rec models.LeaveRecordRow, window DateWindow, unit models.SummaryUnit) decimal.Decimal {
	value := r.Value(rec, unit)
	total := r.totalCountedDays(rec)
	if total == 0 {
		start, _ := r.span(rec)
		if window.contains(start) {
			return value
		}
		return decimal.Zero
	}
	inside := len(r.CountedDays(rec, window))
	if inside == total {
		return value
	}
	return value.Mul(decimal.NewFromInt(int64(inside))).Div(decimal.NewFromInt(int64(total)))
}
