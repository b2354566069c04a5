package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

const (
	// UnassignedDept groups employees without a department.
	UnassignedDept = "未分配"

	MetricTotal = "total"
	MetricAvg   = "avg"

	DefaultRankingLimit = 10
	maxRankingLimit     = 100
)

var weekdayLabels = [5]string{"周一", "周二", "周三", "周四", "周五"}

// AnalyticsServiceParams groups AnalyticsService dependencies.
type AnalyticsServiceParams struct {
	Leaves       LeaveReader
	Organization OrganizationReader
	Cache        *CacheService
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Rules        LeaveRules
	CacheTTL     time.Duration
}

// AnalyticsService computes the yearly charts of the dashboard. Every figure is prorated to the
// requested year so records crossing a year boundary are split by counted days.
type AnalyticsService struct {
	leaves    LeaveReader
	org       OrganizationReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	rules     LeaveRules
	cacheTTL  time.Duration
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(params AnalyticsServiceParams) *AnalyticsService {
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
	return &AnalyticsService{
		leaves:    params.Leaves,
		org:       params.Organization,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		rules:     rules,
		cacheTTL:  params.CacheTTL,
	}
}

// MonthlyTrend totals leave days per month of year and of the year before.
func (s *AnalyticsService) MonthlyTrend(ctx context.Context, year int) (*models.MonthlyTrend, bool, error) {
	if err := s.validateYear(year); err != nil {
		return nil, false, err
	}
	key := makeCacheKey(CacheNamespaceAnalytics, "trend", strconv.Itoa(year))
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (*models.MonthlyTrend, error) {
		current, rules, err := s.loadYear(ctx, year)
		if err != nil {
			return nil, err
		}
		previous, _, err := s.loadYear(ctx, year-1)
		if err != nil {
			return nil, err
		}
		return &models.MonthlyTrend{
			CurrentYear:  s.monthlyTotals(rules, current, year),
			PreviousYear: s.monthlyTotals(rules, previous, year-1),
		}, nil
	})
}

func (s *AnalyticsService) monthlyTotals(rules LeaveRules, records []models.LeaveRecordRow, year int) []models.MonthlyTrendPoint {
	points := make([]models.MonthlyTrendPoint, 12)
	for m := 1; m <= 12; m++ {
		window := MonthWindow(year, m, rules.Location())
		total := decimal.Zero
		for _, rec := range records {
			total = total.Add(rules.Prorate(rec, window, models.UnitDay))
		}
		points[m-1] = models.MonthlyTrendPoint{Month: m, Days: round1(total)}
	}
	return points
}

// TypeDistribution splits the year's leave days by leave type, largest first.
func (s *AnalyticsService) TypeDistribution(ctx context.Context, year int) (*models.LeaveTypeDistribution, bool, error) {
	if err := s.validateYear(year); err != nil {
		return nil, false, err
	}
	key := makeCacheKey(CacheNamespaceAnalytics, "types", strconv.Itoa(year))
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (*models.LeaveTypeDistribution, error) {
		records, rules, err := s.loadYear(ctx, year)
		if err != nil {
			return nil, err
		}
		window := YearWindow(year, rules.Location())
		byType := make(map[string]decimal.Decimal)
		total := decimal.Zero
		for _, rec := range records {
			days := rules.Prorate(rec, window, models.UnitDay)
			byType[rec.TypeName()] = byType[rec.TypeName()].Add(days)
			total = total.Add(days)
		}

		items := make([]models.LeaveTypeShare, 0, len(byType))
		for name, days := range byType {
			share := models.LeaveTypeShare{Type: name, Days: round1(days)}
			if total.IsPositive() {
				share.Ratio = round1(days.Mul(decimal.NewFromInt(100)).Div(total))
			}
			items = append(items, share)
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].Days != items[j].Days {
				return items[i].Days > items[j].Days
			}
			return items[i].Type < items[j].Type
		})
		return &models.LeaveTypeDistribution{Total: round1(total), Items: items}, nil
	})
}

// DepartmentComparison totals the year's leave per department. metric selects the ordering,
// total days or days per head.
func (s *AnalyticsService) DepartmentComparison(ctx context.Context, year int, metric string) (*models.DepartmentComparison, bool, error) {
	if err := s.validateYear(year); err != nil {
		return nil, false, err
	}
	if metric != MetricAvg {
		metric = MetricTotal
	}
	key := makeCacheKey(CacheNamespaceAnalytics, "departments", strconv.Itoa(year), metric)
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (*models.DepartmentComparison, error) {
		employees, err := s.allEmployees(ctx)
		if err != nil {
			return nil, err
		}
		records, rules, err := s.loadYear(ctx, year)
		if err != nil {
			return nil, err
		}

		deptOf := make(map[string]string, len(employees))
		headcount := make(map[string]int)
		for _, e := range employees {
			dept := e.Dept()
			if dept == "" {
				dept = UnassignedDept
			}
			deptOf[e.UserID] = dept
			headcount[dept]++
		}
		window := YearWindow(year, rules.Location())
		days := make(map[string]decimal.Decimal)
		for _, rec := range records {
			dept, ok := deptOf[rec.UserID]
			if !ok {
				continue
			}
			days[dept] = days[dept].Add(rules.Prorate(rec, window, models.UnitDay))
		}

		result := &models.DepartmentComparison{Departments: make([]models.DepartmentLeave, 0, len(headcount))}
		sum := decimal.Zero
		for dept, count := range headcount {
			total := days[dept]
			entry := models.DepartmentLeave{
				Name:      dept,
				TotalDays: round1(total),
				AvgDays:   round1(total.Div(decimal.NewFromInt(int64(count)))),
				Headcount: count,
			}
			sum = sum.Add(decimal.NewFromFloat(entry.TotalDays))
			result.Departments = append(result.Departments, entry)
		}
		sort.Slice(result.Departments, func(i, j int) bool {
			a, b := result.Departments[i], result.Departments[j]
			av, bv := a.TotalDays, b.TotalDays
			if metric == MetricAvg {
				av, bv = a.AvgDays, b.AvgDays
			}
			if av != bv {
				return av > bv
			}
			return NameSortKey(a.Name) < NameSortKey(b.Name)
		})
		if n := len(result.Departments); n > 0 {
			result.Average = round1(sum.Div(decimal.NewFromInt(int64(n))))
		}
		return result, nil
	})
}

// WeekdayDistribution counts leave days falling on each weekday, Monday to Friday.
func (s *AnalyticsService) WeekdayDistribution(ctx context.Context, year int) (*models.WeekdayDistribution, bool, error) {
	if err := s.validateYear(year); err != nil {
		return nil, false, err
	}
	key := makeCacheKey(CacheNamespaceAnalytics, "weekdays", strconv.Itoa(year))
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (*models.WeekdayDistribution, error) {
		records, rules, err := s.loadYear(ctx, year)
		if err != nil {
			return nil, err
		}
		window := YearWindow(year, rules.Location())
		var counts [5]int
		for _, rec := range records {
			for _, day := range rules.CountedDays(rec, window) {
				if wd := MondayWeekday(day); !wd.IsWeekend() {
					counts[wd]++
				}
			}
		}
		result := &models.WeekdayDistribution{Weekdays: make([]models.WeekdayCount, 5)}
		for i, label := range weekdayLabels {
			result.Weekdays[i] = models.WeekdayCount{Day: i + 1, Label: label, Count: counts[i]}
		}
		return result, nil
	})
}

// EmployeeRanking lists the limit employees with the most leave days in year.
func (s *AnalyticsService) EmployeeRanking(ctx context.Context, year, limit int) (*models.EmployeeRanking, bool, error) {
	if err := s.validateYear(year); err != nil {
		return nil, false, err
	}
	switch {
	case limit <= 0:
		limit = DefaultRankingLimit
	case limit > maxRankingLimit:
		limit = maxRankingLimit
	}
	key := makeCacheKey(CacheNamespaceAnalytics, "ranking", strconv.Itoa(year), strconv.Itoa(limit))
	return remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (*models.EmployeeRanking, error) {
		employees, err := s.allEmployees(ctx)
		if err != nil {
			return nil, err
		}
		records, rules, err := s.loadYear(ctx, year)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]models.Employee, len(employees))
		for _, e := range employees {
			byID[e.UserID] = e
		}
		window := YearWindow(year, rules.Location())
		perEmployee := make(map[string]map[string]decimal.Decimal)
		for _, rec := range records {
			if _, ok := byID[rec.UserID]; !ok {
				continue
			}
			types, ok := perEmployee[rec.UserID]
			if !ok {
				types = make(map[string]decimal.Decimal)
				perEmployee[rec.UserID] = types
			}
			types[rec.TypeName()] = types[rec.TypeName()].Add(rules.Prorate(rec, window, models.UnitDay))
		}

		ranked := make([]models.EmployeeRank, 0, len(perEmployee))
		for uid, types := range perEmployee {
			emp := byID[uid]
			total := decimal.Zero
			breakdown := make([]models.LeaveBreakdown, 0, len(types))
			for name, days := range types {
				total = total.Add(days)
				breakdown = append(breakdown, models.LeaveBreakdown{Type: name, Days: round1(days)})
			}
			sort.Slice(breakdown, func(i, j int) bool {
				if breakdown[i].Days != breakdown[j].Days {
					return breakdown[i].Days > breakdown[j].Days
				}
				return breakdown[i].Type < breakdown[j].Type
			})
			ranked = append(ranked, models.EmployeeRank{Name: emp.Name, Dept: emp.Dept(), Total: round1(total), Breakdown: breakdown})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Total != ranked[j].Total {
				return ranked[i].Total > ranked[j].Total
			}
			return NameSortKey(ranked[i].Name) < NameSortKey(ranked[j].Name)
		})
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		return &models.EmployeeRanking{Employees: ranked}, nil
	})
}

func (s *AnalyticsService) validateYear(year int) error {
	if err := s.validator.Var(year, "min=1000,max=9999"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "year must be a four digit year")
	}
	return nil
}

// loadYear reads every record overlapping year together with rules that know the leave types.
func (s *AnalyticsService) loadYear(ctx context.Context, year int) ([]models.LeaveRecordRow, LeaveRules, error) {
	types, _, err := remember(ctx, s.cache, makeCacheKey(CacheNamespaceLeave, "types"), s.cacheTTL, func(ctx context.Context) ([]models.LeaveType, error) {
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
	})
	if err != nil {
		return nil, LeaveRules{}, err
	}
	rules := s.rules.WithTypes(types)

	from, to := YearWindow(year, rules.Location()).Bounds()
	start := time.Now()
	records, err := s.leaves.ListRecords(ctx, models.LeaveRecordFilter{FromMs: from, ToMs: to})
	s.metrics.ObserveDBQuery("analytics_records", time.Since(start))
	if err != nil {
		return nil, LeaveRules{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave records")
	}
	s.metrics.AddLeaveRecords("analytics", len(records))
	s.logger.Debug("analytics records loaded", zap.Int("year", year), zap.Int("records", len(records)))
	return records, rules, nil
}

func (s *AnalyticsService) allEmployees(ctx context.Context) ([]models.Employee, error) {
	start := time.Now()
	employees, err := s.org.ListEmployees(ctx, models.EmployeeFilter{})
	s.metrics.ObserveDBQuery("list_employees", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	return employees, nil
}
