package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leave-dashboard-api/internal/dto"
	"github.com/noah-isme/leave-dashboard-api/internal/middleware"
	"github.com/noah-isme/leave-dashboard-api/internal/models"
	"github.com/noah-isme/leave-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
	"github.com/noah-isme/leave-dashboard-api/pkg/response"
)

func sessionFromContext(c *gin.Context) (*models.Session, error) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return session, nil
}

// respond writes a success envelope carrying the cache flag and handler processing time.
func respond(c *gin.Context, start time.Time, data interface{}, cacheHit bool, pagination *models.Pagination) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processingTimeMs"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, pagination, meta)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+" parameter")
	}
	return v, nil
}

// filterState maps query parameters onto a normalised filter state, defaulting year and month
// to the month containing now.
func filterState(c *gin.Context, now time.Time) (service.LeaveFilterState, error) {
	var q dto.LeaveFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return service.LeaveFilterState{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter parameters")
	}
	state := service.DefaultFilterState(now)
	if q.Year != 0 {
		state.Year = q.Year
	}
	if q.Month != 0 {
		state.Month = q.Month
	}
	state.DeptID = q.DeptID
	state.LeaveTypes = splitList(q.LeaveTypes)
	state.EmployeeName = q.EmployeeName
	state.Unit = models.SummaryUnit(q.Unit)
	state.Page = q.Page
	state.PageSize = q.PageSize
	state.SortBy = q.SortBy
	state.SortOrder = q.SortOrder
	return service.Normalize(state), nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
