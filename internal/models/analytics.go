package models

import "time"

// MonthlyTrendPoint is the leave total of one month.
type MonthlyTrendPoint struct {
	Month int     `json:"month"`
	Days  float64 `json:"days"`
}

// MonthlyTrend compares a year against the previous one.
type MonthlyTrend struct {
	CurrentYear  []MonthlyTrendPoint `json:"currentYear"`
	PreviousYear []MonthlyTrendPoint `json:"previousYear"`
}

// LeaveTypeShare is one slice of the leave type distribution.
type LeaveTypeShare struct {
	Type  string  `json:"type"`
	Days  float64 `json:"days"`
	Ratio float64 `json:"ratio"`
}

// LeaveTypeDistribution is the per-type breakdown of a year.
type LeaveTypeDistribution struct {
	Total float64          `json:"total"`
	Items []LeaveTypeShare `json:"items"`
}

// DepartmentLeave is the leave total of one department.
type DepartmentLeave struct {
	Name      string  `json:"name"`
	TotalDays float64 `json:"totalDays"`
	AvgDays   float64 `json:"avgDays"`
	Headcount int     `json:"headcount"`
}

// DepartmentComparison ranks departments by leave.
type DepartmentComparison struct {
	Departments []DepartmentLeave `json:"departments"`
	Average     float64           `json:"average"`
}

// WeekdayCount is the number of leave days falling on a weekday.
type WeekdayCount struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// WeekdayDistribution counts leave days Monday through Friday.
type WeekdayDistribution struct {
	Weekdays []WeekdayCount `json:"weekdays"`
}

// LeaveBreakdown is the days of one type for an employee.
type LeaveBreakdown struct {
	Type string  `json:"type"`
	Days float64 `json:"days"`
}

// EmployeeRank is one row of the employee ranking.
type EmployeeRank struct {
	Name      string           `json:"name"`
	Dept      string           `json:"dept"`
	Total     float64          `json:"total"`
	Breakdown []LeaveBreakdown `json:"breakdown"`
}

// EmployeeRanking lists employees by total leave.
type EmployeeRanking struct {
	Employees []EmployeeRank `json:"employees"`
}

// AnalyticsSystemMetrics is a point-in-time view of the process counters.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDBQueryDurationMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
