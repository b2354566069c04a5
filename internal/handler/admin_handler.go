package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/dto"
	"github.com/noah-isme/leave-dashboard-api/internal/models"
	"github.com/noah-isme/leave-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
	"github.com/noah-isme/leave-dashboard-api/pkg/response"
)

type cacheInvalidator interface {
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type accessManager interface {
	List(ctx context.Context) ([]models.AllowedUser, error)
	Add(ctx context.Context, req dto.AddAllowedUserRequest) (*models.AllowedUser, error)
	Remove(ctx context.Context, mobile string) error
}

var cacheNamespaces = []string{service.CacheNamespaceLeave, service.CacheNamespaceAnalytics}

// AdminHandler exposes maintenance operations and the access list.
type AdminHandler struct {
	cache  cacheInvalidator
	access accessManager
	logger *zap.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(cache cacheInvalidator, access accessManager, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{cache: cache, access: access, logger: logger}
}

// ListUsers godoc
// @Summary List mobiles allowed to sign in
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	if h.access == nil {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	users, err := h.access.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// AddUser godoc
// @Summary Grant a mobile access to the dashboard
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AddAllowedUserRequest true "Allowed user"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/users [post]
func (h *AdminHandler) AddUser(c *gin.Context) {
	if h.access == nil {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	var req dto.AddAllowedUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allowed user payload"))
		return
	}
	user, err := h.access.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// RemoveUser godoc
// @Summary Revoke dashboard access of a mobile
// @Tags Admin
// @Security BearerAuth
// @Param mobile path string true "Mobile number"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{mobile} [delete]
func (h *AdminHandler) RemoveUser(c *gin.Context) {
	if h.access == nil {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	if err := h.access.Remove(c.Request.Context(), c.Param("mobile")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// InvalidateCache godoc
// @Summary Drop cached dashboard data after a sync
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CacheInvalidateRequest false "Namespaces, all when empty"
// @Success 200 {object} response.Envelope
// @Router /admin/cache/invalidate [post]
func (h *AdminHandler) InvalidateCache(c *gin.Context) {
	if h.cache == nil {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	var req dto.CacheInvalidateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invalidate payload"))
			return
		}
	}
	namespaces := cacheNamespaces
	if len(req.Namespaces) > 0 {
		namespaces = make([]string, 0, len(req.Namespaces))
		for _, ns := range req.Namespaces {
			ns = strings.TrimSpace(ns)
			if !knownNamespace(ns) {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown cache namespace "+ns))
				return
			}
			namespaces = append(namespaces, ns)
		}
	}
	for _, ns := range namespaces {
		if err := h.cache.InvalidateNamespace(c.Request.Context(), ns); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.logger.Info("cache invalidated", zap.Strings("namespaces", namespaces))
	response.JSON(c, http.StatusOK, dto.CacheInvalidateResponse{Invalidated: namespaces}, nil)
}

func knownNamespace(ns string) bool {
	for _, known := range cacheNamespaces {
		if ns == known {
			return true
		}
	}
	return false
}
