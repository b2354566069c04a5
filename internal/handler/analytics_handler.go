package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	"github.com/noah-isme/leave-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
	"github.com/noah-isme/leave-dashboard-api/pkg/response"
)

type analyticsService interface {
	MonthlyTrend(ctx context.Context, year int) (*models.MonthlyTrend, bool, error)
	TypeDistribution(ctx context.Context, year int) (*models.LeaveTypeDistribution, bool, error)
	DepartmentComparison(ctx context.Context, year int, metric string) (*models.DepartmentComparison, bool, error)
	WeekdayDistribution(ctx context.Context, year int) (*models.WeekdayDistribution, bool, error)
	EmployeeRanking(ctx context.Context, year, limit int) (*models.EmployeeRanking, bool, error)
}

type metricsSnapshotter interface {
	Snapshot() models.AnalyticsSystemMetrics
}

// AnalyticsHandler exposes the yearly leave charts.
type AnalyticsHandler struct {
	analytics    analyticsService
	metrics      metricsSnapshotter
	rankingLimit int
	loc          *time.Location
	now          func() time.Time
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService, metrics metricsSnapshotter, rankingLimit int, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if rankingLimit <= 0 {
		rankingLimit = service.DefaultRankingLimit
	}
	return &AnalyticsHandler{analytics: analytics, metrics: metrics, rankingLimit: rankingLimit, loc: loc, now: time.Now}
}

func (h *AnalyticsHandler) year(c *gin.Context) (int, error) {
	return queryInt(c, "year", h.now().In(h.loc).Year())
}

// analyticsCall runs one cached chart query and writes the envelope.
func analyticsCall[T any](c *gin.Context, h *AnalyticsHandler, load func(ctx context.Context, year int) (*T, bool, error)) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	year, err := h.year(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	data, cacheHit, err := load(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, data, cacheHit, nil)
}

// MonthlyTrend godoc
// @Summary Leave days per month with the previous year for comparison
// @Tags Analytics
// @Produce json
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /analytics/trend [get]
func (h *AnalyticsHandler) MonthlyTrend(c *gin.Context) {
	analyticsCall(c, h, func(ctx context.Context, year int) (*models.MonthlyTrend, bool, error) {
		return h.analytics.MonthlyTrend(ctx, year)
	})
}

// TypeDistribution godoc
// @Summary Leave days per leave type
// @Tags Analytics
// @Produce json
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /analytics/types [get]
func (h *AnalyticsHandler) TypeDistribution(c *gin.Context) {
	analyticsCall(c, h, func(ctx context.Context, year int) (*models.LeaveTypeDistribution, bool, error) {
		return h.analytics.TypeDistribution(ctx, year)
	})
}

// DepartmentComparison godoc
// @Summary Leave per department
// @Tags Analytics
// @Produce json
// @Param year query int false "Year"
// @Param metric query string false "total or avg"
// @Success 200 {object} response.Envelope
// @Router /analytics/departments [get]
func (h *AnalyticsHandler) DepartmentComparison(c *gin.Context) {
	metric := strings.ToLower(strings.TrimSpace(c.DefaultQuery("metric", service.MetricTotal)))
	analyticsCall(c, h, func(ctx context.Context, year int) (*models.DepartmentComparison, bool, error) {
		return h.analytics.DepartmentComparison(ctx, year, metric)
	})
}

// WeekdayDistribution godoc
// @Summary Leave days per weekday
// @Tags Analytics
// @Produce json
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /analytics/weekdays [get]
func (h *AnalyticsHandler) WeekdayDistribution(c *gin.Context) {
	analyticsCall(c, h, func(ctx context.Context, year int) (*models.WeekdayDistribution, bool, error) {
		return h.analytics.WeekdayDistribution(ctx, year)
	})
}

// EmployeeRanking godoc
// @Summary Employees with the most leave
// @Tags Analytics
// @Produce json
// @Param year query int false "Year"
// @Param limit query int false "Number of employees"
// @Success 200 {object} response.Envelope
// @Router /analytics/ranking [get]
func (h *AnalyticsHandler) EmployeeRanking(c *gin.Context) {
	limit, err := queryInt(c, "limit", h.rankingLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	analyticsCall(c, h, func(ctx context.Context, year int) (*models.EmployeeRanking, bool, error) {
		return h.analytics.EmployeeRanking(ctx, year, limit)
	})
}

// System godoc
// @Summary Runtime counters for administrators
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
