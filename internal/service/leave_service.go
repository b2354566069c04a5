package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

// LeaveReader reads synced leave data.
type LeaveReader interface {
	ListRecords(ctx context.Context, filter models.LeaveRecordFilter) ([]models.LeaveRecordRow, error)
	ListTypes(ctx context.Context) ([]models.LeaveType, error)
}

// OrganizationReader reads synced departments and employees.
type OrganizationReader interface {
	ChildDepartments(ctx context.Context, parentID int64) ([]models.Department, error)
	DescendantDepartmentIDs(ctx context.Context, deptID int64) ([]int64, error)
	ListEmployees(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
	FindEmployee(ctx context.Context, userID string) (*models.Employee, error)
}

// LeaveServiceParams groups LeaveService dependencies.
type LeaveServiceParams struct {
	Leaves       LeaveReader
	Organization OrganizationReader
	Cache        *CacheService
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Rules        LeaveRules
	RootDeptID   int64
	VisibleTypes []string
	CacheTTL     time.Duration
}

// LeaveService serves the leave tables and calendars of the dashboard.
type LeaveService struct {
	leaves       LeaveReader
	org          OrganizationReader
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	rules        LeaveRules
	rootDeptID   int64
	visibleTypes map[string]struct{}
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(params LeaveServiceParams) *LeaveService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	rules := params.Rules
	if rules.loc == nil {
		rules = NewLeaveRules(NewWorkdayCalendar(nil, nil), time.UTC)
	}
	var visible map[string]struct{}
	if len(params.VisibleTypes) > 0 {
		visible = make(map[string]struct{}, len(params.VisibleTypes))
		for _, name := range params.VisibleTypes {
			visible[name] = struct{}{}
		}
	}
	return &LeaveService{
		leaves:       params.Leaves,
		org:          params.Organization,
		cache:        params.Cache,
		metrics:      params.Metrics,
		validator:    validate,
		logger:       logger,
		rules:        rules,
		rootDeptID:   params.RootDeptID,
		visibleTypes: visible,
		cacheTTL:     params.CacheTTL,
		now:          time.Now,
	}
}

type monthRequest struct {
	Year  int `validate:"min=1000,max=9999"`
	Month int `validate:"min=1,max=12"`
}

type detailRequest struct {
	EmployeeID string `validate:"required"`
	Year       int    `validate:"min=1000,max=9999"`
	Month      int    `validate:"min=1,max=12"`
}

// LeaveTypes lists the leave types offered as filters.
func (s *LeaveService) LeaveTypes(ctx context.Context) ([]models.LeaveType, bool, error) {
	types, hit, err := remember(ctx, s.cache, makeCacheKey(CacheNamespaceLeave, "types"), s.cacheTTL, s.loadTypes)
	if err != nil {
		return nil, false, err
	}
	if s.visibleTypes == nil {
		return types, hit, nil
	}
	visible := make([]models.LeaveType, 0, len(types))
	for _, t := range types {
		if _, ok := s.visibleTypes[t.Name]; ok {
			visible = append(visible, t)
		}
	}
	return visible, hit, nil
}

// Departments lists the children of parentID, or of the configured root when nil.
func (s *LeaveService) Departments(ctx context.Context, parentID *int64) ([]models.Department, bool, error) {
	parent := s.rootDeptID
	if parentID != nil {
		parent = *parentID
	}
	key := makeCacheKey(CacheNamespaceLeave, "departments", strconv.FormatInt(parent, 10))
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) ([]models.Department, error) {
		start := time.Now()
		departments, err := s.org.ChildDepartments(ctx, parent)
		s.metrics.ObserveDBQuery("child_departments", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
		}
		if departments == nil {
			departments = []models.Department{}
		}
		return departments, nil
	})
}

// MonthlySummary builds the per-employee twelve-month table for state.Year.
func (s *LeaveService) MonthlySummary(ctx context.Context, state LeaveFilterState) (*models.MonthlySummary, bool, error) {
	state = Normalize(state)
	if err := s.validator.Var(state.Year, "min=1000,max=9999"); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "year must be a four digit year")
	}

	key := makeCacheKey(CacheNamespaceLeave, "summary", strconv.Itoa(state.Year), deptKey(state.DeptID),
		strings.Join(state.LeaveTypes, ","), state.EmployeeName, string(state.Unit),
		state.SortBy, state.SortOrder, strconv.Itoa(state.Page), strconv.Itoa(state.PageSize))
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (*models.MonthlySummary, error) {
		return s.buildMonthlySummary(ctx, state, true)
	})
}

// FullMonthlySummary is MonthlySummary with every matching row on one page, ordered by name.
// It bypasses the cache.
func (s *LeaveService) FullMonthlySummary(ctx context.Context, state LeaveFilterState) (*models.MonthlySummary, error) {
	state = Normalize(state)
	if err := s.validator.Var(state.Year, "min=1000,max=9999"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "year must be a four digit year")
	}
	state.Page = 1
	state.SortBy = SortByName
	state.SortOrder = SortAsc
	return s.buildMonthlySummary(ctx, state, false)
}

func (s *LeaveService) buildMonthlySummary(ctx context.Context, state LeaveFilterState, paginate bool) (*models.MonthlySummary, error) {
	summary := &models.MonthlySummary{
		List:       []models.EmployeeMonthlyRow{},
		Pagination: models.Pagination{Page: state.Page, PageSize: state.PageSize},
	}

	employees, err := s.scopeEmployees(ctx, state.DeptID, state.EmployeeName)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return summary, nil
	}
	rules, err := s.rulesWithTypes(ctx)
	if err != nil {
		return nil, err
	}

	from, to := YearWindow(state.Year, rules.Location()).Bounds()
	records, err := s.listRecords(ctx, "summary_records", models.LeaveRecordFilter{
		FromMs:     from,
		ToMs:       to,
		StartOnly:  true,
		UserIDs:    employeeIDs(employees),
		LeaveTypes: state.LeaveTypes,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddLeaveRecords("monthly_summary", len(records))

	byID := make(map[string]models.Employee, len(employees))
	for _, e := range employees {
		byID[e.UserID] = e
	}
	monthly := make(map[string]*[12]decimal.Decimal)
	totalAll, annualAll := decimal.Zero, decimal.Zero
	for _, rec := range records {
		if _, ok := byID[rec.UserID]; !ok {
			continue
		}
		value := rules.Value(rec, state.Unit)
		month := rules.Date(rec.StartTime).Month()
		months, ok := monthly[rec.UserID]
		if !ok {
			months = &[12]decimal.Decimal{}
			monthly[rec.UserID] = months
		}
		months[month-1] = months[month-1].Add(value)

		summary.Stats.TotalCount++
		totalAll = totalAll.Add(value)
		if models.ClassifyLeaveType(rec.TypeName()) == models.LeaveKindAnnual {
			annualAll = annualAll.Add(value)
		}
	}

	rows := make([]models.EmployeeMonthlyRow, 0, len(monthly))
	for uid, months := range monthly {
		emp := byID[uid]
		row := models.EmployeeMonthlyRow{EmployeeID: uid, Name: emp.Name, Dept: emp.Dept(), Avatar: emp.Avatar}
		total := decimal.Zero
		for i, v := range months {
			rounded := v.Round(1)
			row.Months[i] = rounded.InexactFloat64()
			total = total.Add(rounded)
		}
		row.Total = total.Round(1).InexactFloat64()
		rows = append(rows, row)
	}
	SortRows(rows, state.SortBy, state.SortOrder)

	persons := len(rows)
	summary.Stats.TotalDays = round1(totalAll)
	summary.Stats.AnnualDays = round1(annualAll)
	if persons > 0 {
		summary.Stats.AvgDays = round1(totalAll.Div(decimal.NewFromInt(int64(persons))))
	}
	if totalAll.IsPositive() {
		summary.Stats.AnnualRatio = round1(annualAll.Mul(decimal.NewFromInt(100)).Div(totalAll))
	}

	var footer [12]decimal.Decimal
	footerTotal := decimal.Zero
	for _, row := range rows {
		for i, v := range row.Months {
			footer[i] = footer[i].Add(decimal.NewFromFloat(v))
		}
		footerTotal = footerTotal.Add(decimal.NewFromFloat(row.Total))
	}
	summary.Summary.PersonCount = persons
	for i := range footer {
		summary.Summary.Months[i] = round1(footer[i])
	}
	summary.Summary.Total = round1(footerTotal)

	summary.List = rows
	if paginate {
		summary.List = Paginate(rows, state.Page, state.PageSize)
	} else {
		summary.Pagination.PageSize = persons
	}
	summary.Pagination.TotalCount = persons
	return summary, nil
}

// DailyDetail lists one employee's leave per day of a month and lays it out on the calendar grid.
func (s *LeaveService) DailyDetail(ctx context.Context, employeeID string, year, month int) (*models.DailyDetail, error) {
	req := detailRequest{EmployeeID: strings.TrimSpace(employeeID), Year: year, Month: month}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid daily detail query")
	}

	start := time.Now()
	emp, err := s.org.FindEmployee(ctx, req.EmployeeID)
	s.metrics.ObserveDBQuery("find_employee", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	rules, err := s.rulesWithTypes(ctx)
	if err != nil {
		return nil, err
	}
	window := MonthWindow(year, month, rules.Location())
	from, to := window.Bounds()
	records, err := s.listRecords(ctx, "detail_records", models.LeaveRecordFilter{
		FromMs:  from,
		ToMs:    to,
		UserIDs: []string{req.EmployeeID},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddLeaveRecords("daily_detail", len(records))

	// Totals agree with the monthly summary; the per-day entries only fall on workdays.
	calendarRules := rules.WorkdaysOnly()
	var entries []models.LeaveRecord
	totalDays, totalHours := decimal.Zero, decimal.Zero
	for _, rec := range records {
		totalDays = totalDays.Add(rules.Prorate(rec, window, models.UnitDay))
		totalHours = totalHours.Add(rules.Prorate(rec, window, models.UnitHour))
		entries = append(entries, calendarRules.Expand(rec, window)...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].StartTime < entries[j].StartTime
	})

	detail := &models.DailyDetail{
		Employee: models.EmployeeBrief{UserID: emp.UserID, Name: emp.Name, Dept: emp.Dept(), Avatar: emp.Avatar},
		Records:  make([]models.DetailRecord, 0, len(entries)),
		Summary:  models.DailyDetailTotals{TotalDays: round1(totalDays), TotalHours: round1(totalHours)},
		Grid:     BuildGrid(year, month, entries),
	}
	for _, entry := range entries {
		detail.Records = append(detail.Records, models.DetailRecord{
			LeaveRecord:   entry,
			DateLabel:     FormatDateLabel(entry.Date),
			DurationLabel: FormatDuration(entry.Hours),
		})
	}
	return detail, nil
}

// DailyLeaveCount counts distinct people on leave per day of state's month.
func (s *LeaveService) DailyLeaveCount(ctx context.Context, state LeaveFilterState) (*models.DailyLeaveSummary, bool, error) {
	state = Normalize(state)
	if err := s.validator.Struct(monthRequest{Year: state.Year, Month: state.Month}); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month")
	}

	key := makeCacheKey(CacheNamespaceLeave, "daily", strconv.Itoa(state.Year), strconv.Itoa(state.Month),
		deptKey(state.DeptID), strings.Join(state.LeaveTypes, ","), state.EmployeeName)
	aggregates, hit, err := remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) ([]models.DailyLeaveAggregate, error) {
		return s.dailyAggregates(ctx, state)
	})
	if err != nil {
		return nil, false, err
	}
	summary := BuildDailySummary(state.Year, state.Month, aggregates, s.now().In(s.rules.Location()))
	return &summary, hit, nil
}

func (s *LeaveService) dailyAggregates(ctx context.Context, state LeaveFilterState) ([]models.DailyLeaveAggregate, error) {
	employees, err := s.scopeEmployees(ctx, state.DeptID, state.EmployeeName)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return []models.DailyLeaveAggregate{}, nil
	}

	window := MonthWindow(state.Year, state.Month, s.rules.Location())
	from, to := window.Bounds()
	records, err := s.listRecords(ctx, "daily_records", models.LeaveRecordFilter{
		FromMs:     from,
		ToMs:       to,
		UserIDs:    employeeIDs(employees),
		LeaveTypes: state.LeaveTypes,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddLeaveRecords("daily_count", len(records))

	byID := make(map[string]models.Employee, len(employees))
	for _, e := range employees {
		byID[e.UserID] = e
	}
	calendarRules := s.rules.WorkdaysOnly()
	byDay := make(map[string]map[string]models.DayLeaveEmployee)
	for _, rec := range records {
		emp, ok := byID[rec.UserID]
		if !ok {
			continue
		}
		for _, day := range calendarRules.CountedDays(rec, window) {
			date := day.Format(dateLayout)
			people, ok := byDay[date]
			if !ok {
				people = make(map[string]models.DayLeaveEmployee)
				byDay[date] = people
			}
			if _, seen := people[rec.UserID]; !seen {
				people[rec.UserID] = models.DayLeaveEmployee{Name: emp.Name, Dept: emp.Dept(), LeaveType: rec.TypeName()}
			}
		}
	}

	aggregates := make([]models.DailyLeaveAggregate, 0, len(byDay))
	for date, people := range byDay {
		list := make([]models.DayLeaveEmployee, 0, len(people))
		for _, p := range people {
			list = append(list, p)
		}
		SortEmployees(list)
		aggregates = append(aggregates, models.DailyLeaveAggregate{Date: date, Employees: list})
	}
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].Date < aggregates[j].Date })
	return aggregates, nil
}

func (s *LeaveService) scopeEmployees(ctx context.Context, deptID *int64, name string) ([]models.Employee, error) {
	filter := models.EmployeeFilter{Name: name}
	if deptID != nil {
		start := time.Now()
		ids, err := s.org.DescendantDepartmentIDs(ctx, *deptID)
		s.metrics.ObserveDBQuery("descendant_departments", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve department")
		}
		filter.DeptIDs = ids
	}
	start := time.Now()
	employees, err := s.org.ListEmployees(ctx, filter)
	s.metrics.ObserveDBQuery("list_employees", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	return employees, nil
}

func (s *LeaveService) loadTypes(ctx context.Context) ([]models.LeaveType, error) {
	start := time.Now()
	types, err := s.leaves.ListTypes(ctx)
	s.metrics.ObserveDBQuery("leave_types", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave types")
	}
	if types == nil {
		types = []models.LeaveType{}
	}
	return types, nil
}

func (s *LeaveService) rulesWithTypes(ctx context.Context) (LeaveRules, error) {
	types, _, err := remember(ctx, s.cache, makeCacheKey(CacheNamespaceLeave, "types"), s.cacheTTL, s.loadTypes)
	if err != nil {
		return LeaveRules{}, err
	}
	return s.rules.WithTypes(types), nil
}

func (s *LeaveService) listRecords(ctx context.Context, label string, filter models.LeaveRecordFilter) ([]models.LeaveRecordRow, error) {
	start := time.Now()
	records, err := s.leaves.ListRecords(ctx, filter)
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave records")
	}
	return records, nil
}

func employeeIDs(employees []models.Employee) []string {
	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.UserID
	}
	return ids
}

func deptKey(deptID *int64) string {
	if deptID == nil {
		return ""
	}
	return strconv.FormatInt(*deptID, 10)
}

func round1(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}
