package service

import (
	"sort"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	SortByName  = "name"
	SortByTotal = "total"
	SortAsc     = "asc"
	SortDesc    = "desc"
)

// LeaveFilterState is the dashboard's filter, sort and pagination state.
type LeaveFilterState struct {
	Year         int                `json:"year" validate:"min=1000,max=9999"`
	Month        int                `json:"month" validate:"min=1,max=12"`
	DeptID       *int64             `json:"deptId,omitempty"`
	LeaveTypes   []string           `json:"leaveTypes,omitempty"`
	EmployeeName string             `json:"employeeName,omitempty"`
	Unit         models.SummaryUnit `json:"unit"`
	Page         int                `json:"page"`
	PageSize     int                `json:"pageSize"`
	SortBy       string             `json:"sortBy"`
	SortOrder    string             `json:"sortOrder"`
}

// FilterChange describes one user interaction. Nil fields are left untouched.
type FilterChange struct {
	Year         *int
	Month        *int
	DeptID       *int64
	ClearDept    bool
	LeaveTypes   *[]string
	EmployeeName *string
	Unit         *models.SummaryUnit
	Page         *int
	PageSize     *int
	SortBy       *string
	SortOrder    *string
}

// DefaultFilterState opens the dashboard on the month containing now.
func DefaultFilterState(now time.Time) LeaveFilterState {
	return Normalize(LeaveFilterState{Year: now.Year(), Month: int(now.Month())})
}

// ApplyFilter returns the state that results from change. The input is not modified.
// Changing what is shown or how it is ordered sends the view back to page 1.
func ApplyFilter(state LeaveFilterState, change FilterChange) LeaveFilterState {
	next := state
	next.LeaveTypes = append([]string(nil), state.LeaveTypes...)
	if state.DeptID != nil {
		dept := *state.DeptID
		next.DeptID = &dept
	}

	reset := false
	if change.Year != nil && *change.Year != state.Year {
		next.Year = *change.Year
		reset = true
	}
	if change.Month != nil && *change.Month != state.Month {
		next.Month = *change.Month
		reset = true
	}
	switch {
	case change.ClearDept:
		if next.DeptID != nil {
			next.DeptID = nil
			reset = true
		}
	case change.DeptID != nil:
		if state.DeptID == nil || *state.DeptID != *change.DeptID {
			dept := *change.DeptID
			next.DeptID = &dept
			reset = true
		}
	}
	if change.LeaveTypes != nil {
		types := dedupe(*change.LeaveTypes)
		if !equalStrings(types, dedupe(state.LeaveTypes)) {
			reset = true
		}
		next.LeaveTypes = types
	}
	if change.EmployeeName != nil && strings.TrimSpace(*change.EmployeeName) != strings.TrimSpace(state.EmployeeName) {
		next.EmployeeName = *change.EmployeeName
		reset = true
	}
	if change.Unit != nil && *change.Unit != state.Unit {
		next.Unit = *change.Unit
		reset = true
	}
	if change.SortBy != nil && *change.SortBy != state.SortBy {
		next.SortBy = *change.SortBy
		reset = true
	}
	if change.SortOrder != nil && *change.SortOrder != state.SortOrder {
		next.SortOrder = *change.SortOrder
		reset = true
	}
	if change.PageSize != nil && *change.PageSize != state.PageSize {
		next.PageSize = *change.PageSize
		reset = true
	}

	if reset {
		next.Page = 1
	}
	if change.Page != nil {
		next.Page = *change.Page
	}
	return Normalize(next)
}

// Normalize clamps the state into its valid domain.
func Normalize(state LeaveFilterState) LeaveFilterState {
	if state.Month < 1 {
		state.Month = 1
	} else if state.Month > 12 {
		state.Month = 12
	}
	if state.Page < 1 {
		state.Page = 1
	}
	if state.PageSize < 1 {
		state.PageSize = defaultPageSize
	} else if state.PageSize > maxPageSize {
		state.PageSize = maxPageSize
	}
	if state.Unit != models.UnitHour {
		state.Unit = models.UnitDay
	}
	if state.SortBy != SortByTotal {
		state.SortBy = SortByName
	}
	if state.SortOrder != SortDesc {
		state.SortOrder = SortAsc
	}
	state.EmployeeName = strings.TrimSpace(state.EmployeeName)
	state.LeaveTypes = dedupe(state.LeaveTypes)
	return state
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var pinyinArgs = func() pinyin.Args {
	args := pinyin.NewArgs()
	args.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{strings.ToLower(string(r))}
	}
	return args
}()

// NameSortKey orders Chinese names by their pinyin spelling; other runes sort as themselves.
func NameSortKey(name string) string {
	return strings.Join(pinyin.LazyPinyin(name, pinyinArgs), "")
}

func lessByName(aName, aID, bName, bID string) bool {
	ka, kb := NameSortKey(aName), NameSortKey(bName)
	if ka != kb {
		return ka < kb
	}
	if aName != bName {
		return aName < bName
	}
	return aID < bID
}

// SortRows orders summary rows by name or total; ties always fall back to name.
func SortRows(rows []models.EmployeeMonthlyRow, sortBy, order string) {
	desc := order == SortDesc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if sortBy == SortByTotal && a.Total != b.Total {
			if desc {
				return a.Total > b.Total
			}
			return a.Total < b.Total
		}
		if desc && sortBy != SortByTotal {
			return lessByName(b.Name, b.EmployeeID, a.Name, a.EmployeeID)
		}
		return lessByName(a.Name, a.EmployeeID, b.Name, b.EmployeeID)
	})
}

// SortEmployees orders a day's people on leave by name.
func SortEmployees(employees []models.DayLeaveEmployee) {
	sort.SliceStable(employees, func(i, j int) bool {
		return lessByName(employees[i].Name, employees[i].Dept, employees[j].Name, employees[j].Dept)
	})
}

// Paginate returns the requested page; a page past the end is empty.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
