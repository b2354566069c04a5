package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leave-dashboard-api/internal/dto"
	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
	"github.com/noah-isme/leave-dashboard-api/pkg/response"
)

type sessionService interface {
	Issue(ctx context.Context, identity models.Identity) (*models.IssuedSession, error)
	Invalidate(ctx context.Context, session *models.Session) error
}

// AuthHandler exposes session endpoints. The identity provider handshake happens upstream, so
// login only accepts an already verified identity.
type AuthHandler struct {
	sessions sessionService
	corpID   string
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions sessionService, corpID string) *AuthHandler {
	return &AuthHandler{sessions: sessions, corpID: corpID}
}

// Config godoc
// @Summary DingTalk settings for the front end login handshake
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/config [get]
func (h *AuthHandler) Config(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.AuthConfigResponse{CorpID: h.corpID}, nil)
}

// DevLogin godoc
// @Summary Issue a session for a verified identity
// @Description Only registered outside production.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.Identity true "Identity"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/dev-login [post]
func (h *AuthHandler) DevLogin(c *gin.Context) {
	var identity models.Identity
	if err := c.ShouldBindJSON(&identity); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	issued, err := h.sessions.Issue(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issued, nil)
}

// Me godoc
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Logout godoc
// @Summary Revoke the current session
// @Tags Authentication
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.sessions.Invalidate(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
