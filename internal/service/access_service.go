package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/dto"
	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

// AllowedUserRepository is the persistence contract of the access list.
type AllowedUserRepository interface {
	List(ctx context.Context) ([]models.AllowedUser, error)
	FindByMobile(ctx context.Context, mobile string) (*models.AllowedUser, error)
	Create(ctx context.Context, user *models.AllowedUser) error
	DeleteByMobile(ctx context.Context, mobile string) error
	AttachUserID(ctx context.Context, mobile, userID string) error
}

// AccessService manages which mobile numbers may sign in. Admin mobiles are always admitted.
type AccessService struct {
	repo      AllowedUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	admins    map[string]struct{}
	now       func() time.Time
}

// NewAccessService constructs an AccessService.
func NewAccessService(repo AllowedUserRepository, validate *validator.Validate, logger *zap.Logger, adminMobiles []string) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccessService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		admins:    mobileSet(adminMobiles),
		now:       time.Now,
	}
}

func mobileSet(mobiles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(mobiles))
	for _, mobile := range mobiles {
		if mobile = strings.TrimSpace(mobile); mobile != "" {
			set[mobile] = struct{}{}
		}
	}
	return set
}

// IsAdmin reports whether mobile is one of the configured admin numbers.
func (s *AccessService) IsAdmin(mobile string) bool {
	_, ok := s.admins[strings.TrimSpace(mobile)]
	return ok
}

// List returns the access list, flagging admin numbers.
func (s *AccessService) List(ctx context.Context) ([]models.AllowedUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allowed users")
	}
	if users == nil {
		users = []models.AllowedUser{}
	}
	for i := range users {
		users[i].IsAdmin = s.IsAdmin(users[i].Mobile)
	}
	return users, nil
}

// Add grants access to a new mobile number.
func (s *AccessService) Add(ctx context.Context, req dto.AddAllowedUserRequest) (*models.AllowedUser, error) {
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allowed user payload")
	}

	if _, err := s.repo.FindByMobile(ctx, req.Mobile); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mobile "+req.Mobile+" already has access")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check allowed user")
	}

	user := &models.AllowedUser{Mobile: req.Mobile, CreatedAt: s.now().UTC()}
	if req.Name != "" {
		user.Name = &req.Name
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add allowed user")
	}
	user.IsAdmin = s.IsAdmin(user.Mobile)
	s.logger.Info("allowed user added", zap.Int64("id", user.ID), zap.String("mobile", user.Mobile))
	return user, nil
}

// Remove revokes access of a mobile number.
func (s *AccessService) Remove(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return appErrors.Clone(appErrors.ErrValidation, "mobile is required")
	}
	if err := s.repo.DeleteByMobile(ctx, mobile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "allowed user "+mobile+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove allowed user")
	}
	s.logger.Info("allowed user removed", zap.String("mobile", mobile))
	return nil
}

// Admit reports whether the identity may be issued a session. A listed entry without a user id
// learns it here.
func (s *AccessService) Admit(ctx context.Context, identity models.Identity) (bool, error) {
	mobile := strings.TrimSpace(identity.Mobile)
	if mobile == "" {
		return false, nil
	}
	if s.IsAdmin(mobile) {
		return true, nil
	}
	user, err := s.repo.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check access list")
	}
	if (user.UserID == nil || *user.UserID == "") && identity.UserID != "" {
		if err := s.repo.AttachUserID(ctx, mobile, identity.UserID); err != nil {
			s.logger.Warn("failed to attach user id", zap.String("mobile", mobile), zap.Error(err))
		}
	}
	return true, nil
}
