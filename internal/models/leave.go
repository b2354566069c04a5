package models

import "strings"

// LeaveStatus is the approval state of a leave record. Display only.
type LeaveStatus string

const (
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// ParseLeaveStatus maps DingTalk and English status labels, defaulting to approved.
func ParseLeaveStatus(raw string) LeaveStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "审批中", "待审批":
		return LeaveStatusPending
	case "rejected", "已拒绝", "拒绝":
		return LeaveStatusRejected
	default:
		return LeaveStatusApproved
	}
}

// LeaveKind is the canonical leave category.
type LeaveKind string

const (
	LeaveKindAnnual    LeaveKind = "annual"
	LeaveKindPersonal  LeaveKind = "personal"
	LeaveKindSick      LeaveKind = "sick"
	LeaveKindComp      LeaveKind = "comp"
	LeaveKindMaternity LeaveKind = "maternity"
	LeaveKindMarriage  LeaveKind = "marriage"
	LeaveKindOther     LeaveKind = "other"
)

// DefaultLeaveTypeName is shown when the source record carries no type label.
const DefaultLeaveTypeName = "请假"

var leaveKindKeywords = []struct {
	kind     LeaveKind
	keywords []string
}{
	{LeaveKindAnnual, []string{"年假", "annual"}},
	{LeaveKindPersonal, []string{"事假", "personal"}},
	{LeaveKindSick, []string{"病假", "sick"}},
	{LeaveKindComp, []string{"调休", "comp"}},
	{LeaveKindMaternity, []string{"产假", "maternity"}},
	{LeaveKindMarriage, []string{"婚假", "marriage"}},
}

// ClassifyLeaveType maps a free-form label onto a category; unknown labels fall back to other.
func ClassifyLeaveType(label string) LeaveKind {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return LeaveKindOther
	}
	for _, entry := range leaveKindKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(normalized, keyword) {
				return entry.kind
			}
		}
	}
	return LeaveKindOther
}

// CountsNaturalDays reports whether weekends and holidays are part of the leave.
func (k LeaveKind) CountsNaturalDays() bool {
	return k == LeaveKindMaternity || k == LeaveKindMarriage
}

// DurationUnit is the unit DingTalk reports a duration in.
type DurationUnit string

const (
	DurationPercentDay  DurationUnit = "percent_day"
	DurationPercentHour DurationUnit = "percent_hour"
)

// SummaryUnit selects how aggregated durations are expressed.
type SummaryUnit string

const (
	UnitDay  SummaryUnit = "day"
	UnitHour SummaryUnit = "hour"
)

// LeaveRecordRow mirrors one row of the synced leave_record table.
type LeaveRecordRow struct {
	ID              int64        `db:"id" json:"id"`
	UserID          string       `db:"userid" json:"userId"`
	StartTime       int64        `db:"start_time" json:"startTime"`
	EndTime         int64        `db:"end_time" json:"endTime"`
	DurationPercent int64        `db:"duration_percent" json:"durationPercent"`
	DurationUnit    DurationUnit `db:"duration_unit" json:"durationUnit"`
	LeaveType       *string      `db:"leave_type" json:"leaveType,omitempty"`
	LeaveCode       *string      `db:"leave_code" json:"leaveCode,omitempty"`
	Status          *string      `db:"status" json:"status,omitempty"`
}

// TypeName returns the leave type label with the default applied.
func (r LeaveRecordRow) TypeName() string {
	if r.LeaveType == nil || strings.TrimSpace(*r.LeaveType) == "" {
		return DefaultLeaveTypeName
	}
	return *r.LeaveType
}

// LeaveType mirrors the synced leave_type table.
type LeaveType struct {
	Code          string  `db:"leave_code" json:"leaveCode"`
	Name          string  `db:"leave_name" json:"leaveName"`
	ViewUnit      *string `db:"leave_view_unit" json:"leaveViewUnit,omitempty"`
	HoursInPerDay int64   `db:"hours_in_per_day" json:"hoursInPerDay"`
}

// LeaveRecordFilter scopes leave record reads. By default a record matches when it overlaps
// [FromMs, ToMs]; StartOnly narrows that to records starting inside the range.
type LeaveRecordFilter struct {
	FromMs     int64
	ToMs       int64
	StartOnly  bool
	UserIDs    []string
	LeaveTypes []string
}
