package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

// SessionStore remembers sessions ended before their natural expiry.
type SessionStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// AccessGate decides whether a verified identity may sign in.
type AccessGate interface {
	Admit(ctx context.Context, identity models.Identity) (bool, error)
}

// SessionConfig defines how dashboard sessions are signed.
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	Issuer       string
	AdminMobiles []string
}

// SessionService issues, resolves and invalidates dashboard sessions.
type SessionService struct {
	store     SessionStore
	access    AccessGate
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig
	admins    map[string]struct{}
	now       func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(store SessionStore, access AccessGate, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &SessionService{
		store:     store,
		access:    access,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		admins:    mobileSet(config.AdminMobiles),
		now:       time.Now,
	}
}

// Issue starts a session for an identity verified by the login collaborator. Only admin mobiles
// and mobiles on the access list are admitted.
func (s *SessionService) Issue(ctx context.Context, identity models.Identity) (*models.IssuedSession, error) {
	if err := s.validator.Struct(identity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid identity")
	}

	_, isAdmin := s.admins[strings.TrimSpace(identity.Mobile)]
	if !isAdmin {
		if err := s.admit(ctx, identity); err != nil {
			s.metrics.RecordSessionEvent("rejected")
			return nil, err
		}
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		Name:      identity.Name,
		Mobile:    identity.Mobile,
		Avatar:    identity.Avatar,
		IsAdmin:   isAdmin,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.config.TTL),
	}

	claims := &models.SessionClaims{
		UserID:  session.UserID,
		Name:    session.Name,
		Mobile:  session.Mobile,
		Avatar:  session.Avatar,
		IsAdmin: session.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session")
	}

	s.metrics.RecordSessionEvent("issued")
	s.logger.Info("session issued",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Bool("admin", session.IsAdmin),
	)

	return &models.IssuedSession{
		Token:     signed,
		ExpiresIn: int64(s.config.TTL.Seconds()),
		Session:   session,
		IssuedAt:  issuedAt,
	}, nil
}

func (s *SessionService) admit(ctx context.Context, identity models.Identity) error {
	if strings.TrimSpace(identity.Mobile) == "" {
		return appErrors.Clone(appErrors.ErrForbidden, "mobile number unavailable, access denied")
	}
	if s.access == nil {
		return appErrors.Clone(appErrors.ErrForbidden, "access not granted, contact an administrator")
	}
	allowed, err := s.access.Admit(ctx, identity)
	if err != nil {
		return err
	}
	if !allowed {
		s.logger.Info("session refused", zap.String("user_id", identity.UserID))
		return appErrors.Clone(appErrors.ErrForbidden, "access not granted, contact an administrator")
	}
	return nil
}

// Resolve verifies a session token and returns the session it carries.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session token")
	}

	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		s.metrics.RecordSessionEvent("rejected")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrSessionExpired.Code, appErrors.ErrSessionExpired.Status, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}

	if s.store != nil {
		revoked, err := s.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to check session state")
		}
		if revoked {
			s.metrics.RecordSessionEvent("rejected")
			return nil, appErrors.Clone(appErrors.ErrSessionRevoked, "session has been signed out")
		}
	}

	session := &models.Session{
		ID:      claims.ID,
		UserID:  claims.UserID,
		Name:    claims.Name,
		Mobile:  claims.Mobile,
		Avatar:  claims.Avatar,
		IsAdmin: claims.IsAdmin,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return session, nil
}

// Invalidate ends a session before its expiry. Ending an already expired session is a no-op.
func (s *SessionService) Invalidate(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	}
	remaining := session.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if s.store == nil {
		return appErrors.Clone(appErrors.ErrUnavailable, "session store not configured")
	}
	if err := s.store.Revoke(ctx, session.ID, remaining); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to revoke session")
	}
	s.metrics.RecordSessionEvent("invalidated")
	s.logger.Info("session invalidated", zap.String("session_id", session.ID), zap.String("user_id", session.UserID))
	return nil
}
