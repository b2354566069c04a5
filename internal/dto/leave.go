package dto

import "github.com/noah-isme/leave-dashboard-api/internal/models"

// LeaveFilterQuery carries the dashboard filters shared by the summary, daily count and export
// endpoints. LeaveTypes accepts repeated parameters as well as comma separated values.
type LeaveFilterQuery struct {
	Year         int      `form:"year"`
	Month        int      `form:"month"`
	DeptID       *int64   `form:"deptId"`
	LeaveTypes   []string `form:"leaveTypes"`
	EmployeeName string   `form:"employeeName"`
	Unit         string   `form:"unit"`
	Page         int      `form:"page"`
	PageSize     int      `form:"pageSize"`
	SortBy       string   `form:"sortBy"`
	SortOrder    string   `form:"sortOrder"`
}

// DailyDetailQuery selects one employee's month.
type DailyDetailQuery struct {
	EmployeeID string `form:"employeeId" binding:"required"`
	Year       int    `form:"year" binding:"required,min=1000,max=9999"`
	Month      int    `form:"month" binding:"required,min=1,max=12"`
}

// CalendarRequest asks for a month grid built from caller supplied records.
type CalendarRequest struct {
	Year       int                          `json:"year" binding:"required"`
	Month      int                          `json:"month" binding:"required"`
	Records    []models.LeaveRecord         `json:"records"`
	Aggregates []models.DailyLeaveAggregate `json:"aggregates"`
}

// CalendarResponse is the grid and headcount summary of a month.
type CalendarResponse struct {
	Grid    models.CalendarGrid      `json:"grid"`
	Summary models.DailyLeaveSummary `json:"summary"`
}

// CacheInvalidateRequest lists the cache namespaces to drop; empty means all.
type CacheInvalidateRequest struct {
	Namespaces []string `json:"namespaces"`
}

// CacheInvalidateResponse reports the namespaces that were dropped.
type CacheInvalidateResponse struct {
	Invalidated []string `json:"invalidated"`
}
