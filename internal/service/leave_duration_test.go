package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

var shanghai = time.FixedZone("CST", 8*60*60)

func strPtr(v string) *string { return &v }

func leaveRow(start, end time.Time, percent int64, unit models.DurationUnit, typeName string) models.LeaveRecordRow {
	return models.LeaveRecordRow{
		UserID:          "u1",
		StartTime:       start.UnixMilli(),
		EndTime:         end.UnixMilli(),
		DurationPercent: percent,
		DurationUnit:    unit,
		LeaveType:       strPtr(typeName),
		LeaveCode:       strPtr("code-" + typeName),
	}
}

func TestConvertDuration(t *testing.T) {
	cases := []struct {
		name    string
		percent int64
		unit    models.DurationUnit
		target  models.SummaryUnit
		hpd     int64
		want    string
	}{
		{"day to day", 150, models.DurationPercentDay, models.UnitDay, 800, "1.5"},
		{"day to hour", 150, models.DurationPercentDay, models.UnitHour, 800, "12"},
		{"hour to day", 400, models.DurationPercentHour, models.UnitDay, 800, "0.5"},
		{"hour to hour", 350, models.DurationPercentHour, models.UnitHour, 0, "3.5"},
		{"twelve hour day", 100, models.DurationPercentDay, models.UnitDay, 1200, "1.5"},
		{"default day length", 100, models.DurationPercentDay, models.UnitHour, 0, "8"},
		{"negative", -100, models.DurationPercentDay, models.UnitDay, 800, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConvertDuration(tc.percent, tc.unit, tc.target, tc.hpd)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestWorkdayCalendar(t *testing.T) {
	cal := NewWorkdayCalendar(
		[]time.Time{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		[]time.Time{time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)},
	)
	assert.False(t, cal.IsWorkday(time.Date(2025, 1, 1, 0, 0, 0, 0, shanghai)))
	assert.True(t, cal.IsWorkday(time.Date(2025, 1, 2, 0, 0, 0, 0, shanghai)))
	assert.False(t, cal.IsWorkday(time.Date(2025, 1, 4, 0, 0, 0, 0, shanghai)))
	assert.True(t, cal.IsWorkday(time.Date(2025, 1, 26, 0, 0, 0, 0, shanghai)))

	var none *WorkdayCalendar
	assert.False(t, none.IsWorkday(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
}

func TestExpandSkipsWeekendAndKeepsBoundaryTimes(t *testing.T) {
	rules := NewLeaveRules(NewWorkdayCalendar(nil, nil), shanghai)
	// Friday 13:30 to Tuesday 12:00, three working days.
	rec := leaveRow(
		time.Date(2025, 1, 3, 13, 30, 0, 0, shanghai),
		time.Date(2025, 1, 7, 12, 0, 0, 0, shanghai),
		300, models.DurationPercentDay, "年假",
	)

	entries := rules.Expand(rec, MonthWindow(2025, 1, shanghai))

	require.Len(t, entries, 3)
	assert.Equal(t, "2025-01-03", entries[0].Date)
	assert.Equal(t, "13:30", entries[0].StartTime)
	assert.Equal(t, defaultDayEnd, entries[0].EndTime)
	assert.Equal(t, "2025-01-06", entries[1].Date)
	assert.Equal(t, defaultDayStart, entries[1].StartTime)
	assert.Equal(t, "2025-01-07", entries[2].Date)
	assert.Equal(t, "12:00", entries[2].EndTime)
	for _, e := range entries {
		assert.Equal(t, 8.0, e.Hours)
		assert.Equal(t, models.LeaveKindAnnual, e.Category)
		assert.Equal(t, models.LeaveStatusApproved, e.Status)
	}
}

func TestExpandCountsNaturalDaysForMaternityLeave(t *testing.T) {
	rules := NewLeaveRules(NewWorkdayCalendar(nil, nil), shanghai)
	rec := leaveRow(
		time.Date(2025, 1, 3, 9, 0, 0, 0, shanghai),
		time.Date(2025, 1, 6, 18, 0, 0, 0, shanghai),
		400, models.DurationPercentDay, "产假",
	)

	entries := rules.Expand(rec, MonthWindow(2025, 1, shanghai))
	require.Len(t, entries, 4)
	assert.Equal(t, "2025-01-04", entries[1].Date)
}

func TestWorkdaysOnlyRulesSkipWeekendForMaternityLeave(t *testing.T) {
	rules := NewLeaveRules(NewWorkdayCalendar(nil, nil), shanghai).WorkdaysOnly()
	rec := leaveRow(
		time.Date(2025, 1, 3, 9, 0, 0, 0, shanghai),
		time.Date(2025, 1, 6, 18, 0, 0, 0, shanghai),
		400, models.DurationPercentDay, "产假",
	)

	entries := rules.Expand(rec, MonthWindow(2025, 1, shanghai))
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-01-03", entries[0].Date)
	assert.Equal(t, "2025-01-06", entries[1].Date)
	assert.Equal(t, 16.0, entries[0].Hours)
	assert.Equal(t, models.LeaveKindMaternity, entries[0].Category)
}

func TestExpandClampsToWindow(t *testing.T) {
	rules := NewLeaveRules(NewWorkdayCalendar(nil, nil), shanghai)
	rec := leaveRow(
		time.Date(2025, 1, 30, 9, 0, 0, 0, shanghai),
		time.Date(2025, 2, 4, 18, 0, 0, 0, shanghai),
		400, models.DurationPercentDay, "事假",
	)
	rec.Status = strPtr("审批中")

	feb := rules.Expand(rec, MonthWindow(2025, 2, shanghai))
	require.Len(t, feb, 2)
	assert.Equal(t, "2025-02-03", feb[0].Date)
	assert.Equal(t, defaultDayStart, feb[0].StartTime)
	assert.Equal(t, models.LeaveStatusPending, feb[0].Status)
}

func TestProrateSplitsAcrossMonths(t *testing.T) {
	rules := NewLeaveRules(NewWorkdayCalendar(nil, nil), shanghai).WithTypes([]models.LeaveType{
		{Code: "code-事假", Name: "事假", HoursInPerDay: 800},
	})
	rec := leaveRow(
		time.Date(2025, 1, 30, 9, 0, 0, 0, shanghai),
		time.Date(2025, 2, 4, 18, 0, 0, 0, shanghai),
		400, models.DurationPercentDay, "事假",
	)

	jan := rules.Prorate(rec, MonthWindow(2025, 1, shanghai), models.UnitDay)
	feb := rules.Prorate(rec, MonthWindow(2025, 2, shanghai), models.UnitDay)
	year := rules.Prorate(rec, YearWindow(2025, shanghai), models.UnitDay)

	assert.Equal(t, "2", jan.String())
	assert.Equal(t, "2", feb.String())
	assert.Equal(t, "4", year.String())
}

func TestProrateWeekendOnlyRecord(t *testing.T) {
	rules := NewLeaveRules(NewWorkdayCalendar(nil, nil), shanghai)
	rec := leaveRow(
		time.Date(2025, 1, 4, 9, 0, 0, 0, shanghai),
		time.Date(2025, 1, 4, 12, 0, 0, 0, shanghai),
		300, models.DurationPercentHour, "调休",
	)
	assert.Equal(t, "3", rules.Prorate(rec, MonthWindow(2025, 1, shanghai), models.UnitHour).String())
	assert.True(t, rules.Prorate(rec, MonthWindow(2025, 2, shanghai), models.UnitHour).IsZero())
}

func TestDateWindowBounds(t *testing.T) {
	from, to := MonthWindow(2025, 2, shanghai).Bounds()
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, shanghai).UnixMilli(), from)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, shanghai).UnixMilli()-1, to)
}
