package models

// EmployeeMonthlyRow is one employee's leave per month of a year.
type EmployeeMonthlyRow struct {
	EmployeeID string      `json:"employeeId"`
	Name       string      `json:"name"`
	Dept       string      `json:"dept"`
	Avatar     *string     `json:"avatar,omitempty"`
	Months     [12]float64 `json:"months"`
	Total      float64     `json:"total"`
}

// MonthlySummaryStats are the headline figures above the table.
type MonthlySummaryStats struct {
	TotalCount  int     `json:"totalCount"`
	TotalDays   float64 `json:"totalDays"`
	AvgDays     float64 `json:"avgDays"`
	AnnualRatio float64 `json:"annualRatio"`
	AnnualDays  float64 `json:"annualDays"`
}

// MonthlySummaryTotals is the footer row across all matching employees.
type MonthlySummaryTotals struct {
	PersonCount int         `json:"personCount"`
	Months      [12]float64 `json:"months"`
	Total       float64     `json:"total"`
}

// MonthlySummary is the paginated monthly leave table.
type MonthlySummary struct {
	Stats      MonthlySummaryStats  `json:"stats"`
	List       []EmployeeMonthlyRow `json:"list"`
	Summary    MonthlySummaryTotals `json:"summary"`
	Pagination Pagination           `json:"pagination"`
}

// EmployeeBrief identifies the employee of a detail view.
type EmployeeBrief struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Dept   string  `json:"dept"`
	Avatar *string `json:"avatar,omitempty"`
}

// DetailRecord is a per-day leave entry with display labels.
type DetailRecord struct {
	LeaveRecord
	DateLabel     string `json:"dateLabel"`
	DurationLabel string `json:"durationLabel"`
}

// DailyDetailTotals sums an employee's leave in the month.
type DailyDetailTotals struct {
	TotalDays  float64 `json:"totalDays"`
	TotalHours float64 `json:"totalHours"`
}

// DailyDetail is one employee's leave for a month, listed and laid out on the calendar grid.
type DailyDetail struct {
	Employee EmployeeBrief     `json:"employee"`
	Records  []DetailRecord    `json:"records"`
	Summary  DailyDetailTotals `json:"summary"`
	Grid     CalendarGrid      `json:"grid"`
}
