package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
	"github.com/noah-isme/leave-dashboard-api/pkg/response"
)

type departmentService interface {
	Departments(ctx context.Context, parentID *int64) ([]models.Department, bool, error)
}

// DepartmentHandler serves the department tree used by the filter panel.
type DepartmentHandler struct {
	service departmentService
}

// NewDepartmentHandler constructs the handler.
func NewDepartmentHandler(service departmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

// List godoc
// @Summary Child departments
// @Tags Organization
// @Produce json
// @Param parentId query int false "Parent department, defaults to the configured root"
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var parentID *int64
	if raw := strings.TrimSpace(c.Query("parentId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid parentId parameter"))
			return
		}
		parentID = &id
	}
	start := time.Now()
	departments, cacheHit, err := h.service.Departments(c.Request.Context(), parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, departments, cacheHit, nil)
}
