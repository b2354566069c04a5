package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	"github.com/noah-isme/leave-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

type fakeLeaveSrv struct {
	summary    *models.MonthlySummary
	summaryHit bool
	detail     *models.DailyDetail
	daily      *models.DailyLeaveSummary
	types      []models.LeaveType
	err        error
	lastState  service.LeaveFilterState
	lastDetail struct {
		employeeID  string
		year, month int
	}
}

func (f *fakeLeaveSrv) LeaveTypes(context.Context) ([]models.LeaveType, bool, error) {
	return f.types, true, f.err
}

func (f *fakeLeaveSrv) MonthlySummary(_ context.Context, state service.LeaveFilterState) (*models.MonthlySummary, bool, error) {
	f.lastState = state
	return f.summary, f.summaryHit, f.err
}

func (f *fakeLeaveSrv) DailyDetail(_ context.Context, employeeID string, year, month int) (*models.DailyDetail, error) {
	f.lastDetail.employeeID = employeeID
	f.lastDetail.year = year
	f.lastDetail.month = month
	return f.detail, f.err
}

func (f *fakeLeaveSrv) DailyLeaveCount(_ context.Context, state service.LeaveFilterState) (*models.DailyLeaveSummary, bool, error) {
	f.lastState = state
	return f.daily, false, f.err
}

type fakeExportSrv struct {
	format models.ExportFormat
	state  service.LeaveFilterState
}

func (f *fakeExportSrv) Export(_ context.Context, state service.LeaveFilterState, format models.ExportFormat) (*models.ExportFile, error) {
	f.state = state
	f.format = format
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &models.ExportFile{Filename: "leave-summary-2025.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("a,b\n")}, nil
}

type responseEnvelope struct {
	Data       map[string]interface{} `json:"data"`
	Meta       map[string]interface{} `json:"meta"`
	Pagination map[string]interface{} `json:"pagination"`
	Error      map[string]interface{} `json:"error"`
}

func newLeaveHandler(srv leaveService, export exportService) *LeaveHandler {
	h := NewLeaveHandler(srv, export, time.UTC)
	h.now = func() time.Time { return time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC) }
	return h
}

func serve(method, target string, body []byte, fn gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	fn(c)
	c.Writer.WriteHeaderNow()
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestLeaveHandlerMonthlySummaryParsesFilters(t *testing.T) {
	srv := &fakeLeaveSrv{
		summary:    &models.MonthlySummary{Pagination: models.Pagination{Page: 2, PageSize: 20, TotalCount: 41}},
		summaryHit: true,
	}
	handler := newLeaveHandler(srv, nil)

	query := url.Values{}
	query.Set("year", "2024")
	query.Set("deptId", "7")
	query.Add("leaveTypes", "年假,病假")
	query.Add("leaveTypes", "年假")
	query.Set("employeeName", " 张 ")
	query.Set("unit", "hour")
	query.Set("page", "2")
	query.Set("pageSize", "20")
	query.Set("sortBy", "total")
	query.Set("sortOrder", "desc")
	rec := serve(http.MethodGet, "/leave/summary?"+query.Encode(), nil, handler.MonthlySummary)

	require.Equal(t, http.StatusOK, rec.Code)
	state := srv.lastState
	assert.Equal(t, 2024, state.Year)
	assert.Equal(t, 3, state.Month)
	require.NotNil(t, state.DeptID)
	assert.Equal(t, int64(7), *state.DeptID)
	assert.Equal(t, []string{"年假", "病假"}, state.LeaveTypes)
	assert.Equal(t, "张", state.EmployeeName)
	assert.Equal(t, models.UnitHour, state.Unit)
	assert.Equal(t, service.SortByTotal, state.SortBy)
	assert.Equal(t, service.SortDesc, state.SortOrder)
	assert.Equal(t, 2, state.Page)
	assert.Equal(t, 20, state.PageSize)

	envelope := decode(t, rec)
	assert.Equal(t, true, envelope.Meta["cacheHit"])
	assert.Contains(t, envelope.Meta, "processingTimeMs")
	assert.Equal(t, float64(41), envelope.Pagination["total"])
}

func TestLeaveHandlerMonthlySummaryDefaults(t *testing.T) {
	srv := &fakeLeaveSrv{summary: &models.MonthlySummary{}}
	handler := newLeaveHandler(srv, nil)

	rec := serve(http.MethodGet, "/leave/summary", nil, handler.MonthlySummary)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, srv.lastState.Year)
	assert.Equal(t, 1, srv.lastState.Page)
	assert.Equal(t, 10, srv.lastState.PageSize)
	assert.Equal(t, models.UnitDay, srv.lastState.Unit)
	assert.Nil(t, srv.lastState.DeptID)
}

func TestLeaveHandlerMonthlySummaryRejectsBadNumbers(t *testing.T) {
	handler := newLeaveHandler(&fakeLeaveSrv{}, nil)

	rec := serve(http.MethodGet, "/leave/summary?year=abc", nil, handler.MonthlySummary)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandlerDailyDetail(t *testing.T) {
	srv := &fakeLeaveSrv{detail: &models.DailyDetail{}}
	handler := newLeaveHandler(srv, nil)

	rec := serve(http.MethodGet, "/leave/detail?employeeId=u1&year=2025&month=1", nil, handler.DailyDetail)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", srv.lastDetail.employeeID)
	assert.Equal(t, 2025, srv.lastDetail.year)
	assert.Equal(t, 1, srv.lastDetail.month)
}

func TestLeaveHandlerDailyDetailErrors(t *testing.T) {
	handler := newLeaveHandler(&fakeLeaveSrv{}, nil)
	rec := serve(http.MethodGet, "/leave/detail?year=2025&month=13", nil, handler.DailyDetail)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	missing := newLeaveHandler(&fakeLeaveSrv{err: appErrors.Clone(appErrors.ErrNotFound, "employee not found")}, nil)
	rec = serve(http.MethodGet, "/leave/detail?employeeId=ghost&year=2025&month=1", nil, missing.DailyDetail)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Error["code"])
}

func TestLeaveHandlerDailyCountUsesCurrentMonth(t *testing.T) {
	srv := &fakeLeaveSrv{daily: &models.DailyLeaveSummary{TodayCount: 2, MaxCount: 3}}
	handler := newLeaveHandler(srv, nil)

	rec := serve(http.MethodGet, "/leave/daily", nil, handler.DailyCount)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, srv.lastState.Month)
	envelope := decode(t, rec)
	assert.Equal(t, float64(2), envelope.Data["todayCount"])
	assert.Equal(t, false, envelope.Meta["cacheHit"])
}

func TestLeaveHandlerCalendar(t *testing.T) {
	handler := newLeaveHandler(&fakeLeaveSrv{}, nil)
	body, err := json.Marshal(map[string]interface{}{"year": 2025, "month": 1})
	require.NoError(t, err)

	rec := serve(http.MethodPost, "/leave/calendar", body, handler.Calendar)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decode(t, rec)
	grid, ok := envelope.Data["grid"].([]interface{})
	require.True(t, ok)
	assert.Len(t, grid, models.GridRows)
	assert.Contains(t, envelope.Data, "summary")

	bad, err := json.Marshal(map[string]interface{}{"year": 2025, "month": 13})
	require.NoError(t, err)
	rec = serve(http.MethodPost, "/leave/calendar", bad, handler.Calendar)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandlerExport(t *testing.T) {
	export := &fakeExportSrv{}
	handler := newLeaveHandler(&fakeLeaveSrv{}, export)

	rec := serve(http.MethodGet, "/leave/export?year=2025", nil, handler.Export)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ExportFormatCSV, export.format)
	assert.Equal(t, 2025, export.state.Year)
	assert.Equal(t, `attachment; filename="leave-summary-2025.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())

	rec = serve(http.MethodGet, "/leave/export?format=XLSX", nil, handler.Export)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ExportFormat("xlsx"), export.format)
}

func TestLeaveHandlerExportDisabled(t *testing.T) {
	handler := newLeaveHandler(&fakeLeaveSrv{}, nil)

	rec := serve(http.MethodGet, "/leave/export", nil, handler.Export)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "FEATURE_DISABLED", decode(t, rec).Error["code"])
}
