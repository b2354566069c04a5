package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leave-dashboard-api/internal/dto"
	"github.com/noah-isme/leave-dashboard-api/internal/models"
	"github.com/noah-isme/leave-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
	"github.com/noah-isme/leave-dashboard-api/pkg/response"
)

type leaveService interface {
	LeaveTypes(ctx context.Context) ([]models.LeaveType, bool, error)
	MonthlySummary(ctx context.Context, state service.LeaveFilterState) (*models.MonthlySummary, bool, error)
	DailyDetail(ctx context.Context, employeeID string, year, month int) (*models.DailyDetail, error)
	DailyLeaveCount(ctx context.Context, state service.LeaveFilterState) (*models.DailyLeaveSummary, bool, error)
}

type exportService interface {
	Export(ctx context.Context, state service.LeaveFilterState, format models.ExportFormat) (*models.ExportFile, error)
}

// LeaveHandler serves the leave dashboard views.
type LeaveHandler struct {
	service leaveService
	export  exportService
	loc     *time.Location
	now     func() time.Time
}

// NewLeaveHandler constructs the handler. A nil export service disables the export endpoint.
func NewLeaveHandler(service leaveService, export exportService, loc *time.Location) *LeaveHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaveHandler{service: service, export: export, loc: loc, now: time.Now}
}

func (h *LeaveHandler) today() time.Time {
	return h.now().In(h.loc)
}

// Types godoc
// @Summary Visible leave types
// @Tags Leave
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leave/types [get]
func (h *LeaveHandler) Types(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	types, cacheHit, err := h.service.LeaveTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, types, cacheHit, nil)
}

// MonthlySummary godoc
// @Summary Monthly leave table
// @Tags Leave
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Param deptId query int false "Department scope"
// @Param leaveTypes query []string false "Leave type labels"
// @Param employeeName query string false "Name fragment"
// @Param unit query string false "day or hour"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param sortBy query string false "name or total"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /leave/summary [get]
func (h *LeaveHandler) MonthlySummary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	state, err := filterState(c, h.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.MonthlySummary(c.Request.Context(), state)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := summary.Pagination
	respond(c, start, summary, cacheHit, &pagination)
}

// DailyDetail godoc
// @Summary One employee's month of leave
// @Tags Leave
// @Produce json
// @Param employeeId query string true "Employee user ID"
// @Param year query int true "Year"
// @Param month query int true "Month"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leave/detail [get]
func (h *LeaveHandler) DailyDetail(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DailyDetailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "employeeId, year and month are required"))
		return
	}
	start := time.Now()
	detail, err := h.service.DailyDetail(c.Request.Context(), strings.TrimSpace(query.EmployeeID), query.Year, query.Month)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, detail, false, nil)
}

// DailyCount godoc
// @Summary Daily headcount on leave for a month
// @Tags Leave
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month"
// @Param deptId query int false "Department scope"
// @Param employeeName query string false "Name fragment"
// @Success 200 {object} response.Envelope
// @Router /leave/daily [get]
func (h *LeaveHandler) DailyCount(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	state, err := filterState(c, h.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.DailyLeaveCount(c.Request.Context(), state)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, summary, cacheHit, nil)
}

// Calendar godoc
// @Summary Build a month grid from supplied records
// @Tags Leave
// @Accept json
// @Produce json
// @Param request body dto.CalendarRequest true "Month and records"
// @Success 200 {object} response.Envelope
// @Router /leave/calendar [post]
func (h *LeaveHandler) Calendar(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar payload"))
		return
	}
	if req.Year < 1000 || req.Year > 9999 || req.Month < 1 || req.Month > 12 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year or month out of range"))
		return
	}
	start := time.Now()
	result := dto.CalendarResponse{
		Grid:    service.BuildGrid(req.Year, req.Month, req.Records),
		Summary: service.BuildDailySummary(req.Year, req.Month, req.Aggregates, h.today()),
	}
	respond(c, start, result, false, nil)
}

// Export godoc
// @Summary Download the monthly leave table
// @Tags Leave
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param year query int false "Year"
// @Success 200 {file} file
// @Router /leave/export [get]
func (h *LeaveHandler) Export(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "export is disabled"))
		return
	}
	state, err := filterState(c, h.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(models.ExportFormatCSV)))))
	file, err := h.export.Export(c.Request.Context(), state, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
