package models

const (
	// GridRows is fixed so month switches never change the layout height.
	GridRows    = 6
	GridColumns = 7
	GridCells   = GridRows * GridColumns
)

// LeaveRecord is one leave entry attributed to a single calendar date.
type LeaveRecord struct {
	Date      string      `json:"date"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Hours     float64     `json:"hours"`
	LeaveType string      `json:"leaveType"`
	Category  LeaveKind   `json:"category,omitempty"`
	Status    LeaveStatus `json:"status"`
}

// CalendarCell is one slot of the month grid. Day is nil for padding cells.
type CalendarCell struct {
	Day        *int          `json:"day"`
	IsWeekend  bool          `json:"isWeekend"`
	Records    []LeaveRecord `json:"records"`
	HasLeave   bool          `json:"hasLeave"`
	IsFullDay  bool          `json:"isFullDay"`
	TotalHours float64       `json:"totalHours"`
}

// IsPadding reports whether the cell lies outside the displayed month.
func (c CalendarCell) IsPadding() bool {
	return c.Day == nil
}

// CalendarGrid is a Monday-first 6x7 month matrix.
type CalendarGrid [GridRows][GridColumns]CalendarCell

// DayClass is the leave classification of a single day.
type DayClass struct {
	HasLeave   bool
	TotalHours float64
	IsFullDay  bool
}

// DayLeaveEmployee is a person on leave on a given date.
type DayLeaveEmployee struct {
	Name      string `json:"name"`
	Dept      string `json:"dept,omitempty"`
	LeaveType string `json:"leaveType"`
}

// DailyLeaveAggregate is the pre-grouped set of people on leave for one date.
type DailyLeaveAggregate struct {
	Date      string             `json:"date"`
	Employees []DayLeaveEmployee `json:"employees"`
}

// DayLeaveCount is the headcount entry of one date in a DailyLeaveSummary.
type DayLeaveCount struct {
	Date      string             `json:"date"`
	Count     int                `json:"count"`
	Employees []DayLeaveEmployee `json:"employees"`
	Tier      HeatTier           `json:"tier"`
}

// DailyLeaveSummary feeds the heatmap and list views of a month.
type DailyLeaveSummary struct {
	TodayCount int             `json:"todayCount"`
	Days       []DayLeaveCount `json:"days"`
	MaxCount   int             `json:"maxCount"`
}

// HeatTier is the discrete heatmap intensity of a day.
type HeatTier string

const (
	HeatTierNone HeatTier = "none"
	HeatTierLow  HeatTier = "low"
	HeatTierMid  HeatTier = "mid"
	HeatTierHigh HeatTier = "high"
	HeatTierMax  HeatTier = "max"
)
