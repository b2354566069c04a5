package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

type memorySessionStore struct {
	revoked map[string]time.Duration
	err     error
}

func (m *memorySessionStore) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if m.revoked == nil {
		m.revoked = map[string]time.Duration{}
	}
	m.revoked[id] = ttl
	return nil
}

func (m *memorySessionStore) IsRevoked(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[id]
	return ok, nil
}

type staticAccessGate struct {
	allowed map[string]bool
	err     error
}

func (g staticAccessGate) Admit(_ context.Context, identity models.Identity) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.allowed[identity.Mobile], nil
}

func newTestSessionService(store SessionStore, now time.Time) *SessionService {
	gate := staticAccessGate{allowed: map[string]bool{"13900000000": true}}
	svc := NewSessionService(store, gate, nil, nil, zap.NewNop(), SessionConfig{
		Secret:       "test-secret",
		TTL:          2 * time.Hour,
		Issuer:       "leave-dashboard",
		AdminMobiles: []string{"13800000000"},
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestSessionLifecycle(t *testing.T) {
	store := &memorySessionStore{}
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	svc := newTestSessionService(store, now)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, models.Identity{UserID: "u-1", Name: "张三", Mobile: "13800000000"})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.EqualValues(t, 7200, issued.ExpiresIn)
	assert.True(t, issued.Session.IsAdmin)
	assert.Equal(t, now.Add(2*time.Hour), issued.Session.ExpiresAt)

	session, err := svc.Resolve(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.Session.ID, session.ID)
	assert.Equal(t, "u-1", session.UserID)
	assert.Equal(t, "张三", session.Name)
	assert.True(t, session.IsAdmin)
	assert.True(t, session.Active(now))

	require.NoError(t, svc.Invalidate(ctx, session))
	assert.Equal(t, 2*time.Hour, store.revoked[session.ID])

	_, err = svc.Resolve(ctx, issued.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionRevoked.Code, appErrors.FromError(err).Code)
}

func TestSessionResolveRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	svc := newTestSessionService(&memorySessionStore{}, now)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, models.Identity{UserID: "u-2", Name: "李四", Mobile: "13900000000"})
	require.NoError(t, err)
	assert.False(t, issued.Session.IsAdmin)

	svc.now = func() time.Time { return now.Add(3 * time.Hour) }
	_, err = svc.Resolve(ctx, issued.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)

	other := newTestSessionService(nil, now)
	other.config.Secret = "another-secret"
	_, err = other.Resolve(ctx, issued.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Resolve(ctx, "")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestSessionIssueValidatesIdentity(t *testing.T) {
	svc := newTestSessionService(nil, time.Now())
	_, err := svc.Issue(context.Background(), models.Identity{Name: "missing id"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionIssueRequiresAccess(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(nil, time.Now())

	issued, err := svc.Issue(ctx, models.Identity{UserID: "u-3", Name: "王五", Mobile: "13900000000"})
	require.NoError(t, err)
	assert.False(t, issued.Session.IsAdmin)

	_, err = svc.Issue(ctx, models.Identity{UserID: "u-4", Name: "赵六", Mobile: "13700000000"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Issue(ctx, models.Identity{UserID: "u-4", Name: "赵六"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	svc.access = staticAccessGate{err: appErrors.Clone(appErrors.ErrInternal, "db down")}
	_, err = svc.Issue(ctx, models.Identity{UserID: "u-3", Name: "王五", Mobile: "13900000000"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	svc.access = nil
	issued, err = svc.Issue(ctx, models.Identity{UserID: "u-1", Name: "张三", Mobile: "13800000000"})
	require.NoError(t, err)
	assert.True(t, issued.Session.IsAdmin)

	_, err = svc.Issue(ctx, models.Identity{UserID: "u-3", Name: "王五", Mobile: "13900000000"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSessionInvalidate(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	svc := newTestSessionService(&memorySessionStore{err: errors.New("redis down")}, now)
	err := svc.Invalidate(ctx, &models.Session{ID: "s", ExpiresAt: now.Add(time.Hour)})
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)

	assert.NoError(t, svc.Invalidate(ctx, &models.Session{ID: "s", ExpiresAt: now.Add(-time.Minute)}))

	err = svc.Invalidate(ctx, nil)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
