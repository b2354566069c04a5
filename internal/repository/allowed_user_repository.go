package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

// AllowedUserRepository persists the dashboard access list.
type AllowedUserRepository struct {
	db *sqlx.DB
}

// NewAllowedUserRepository constructs an AllowedUserRepository.
func NewAllowedUserRepository(db *sqlx.DB) *AllowedUserRepository {
	return &AllowedUserRepository{db: db}
}

// List returns every allowed user in insertion order.
func (r *AllowedUserRepository) List(ctx context.Context) ([]models.AllowedUser, error) {
	const query = `SELECT id, mobile, name, userid, created_at FROM allowed_user ORDER BY id ASC`
	var users []models.AllowedUser
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list allowed users: %w", err)
	}
	return users, nil
}

// FindByMobile fetches an allowed user. sql.ErrNoRows is returned untouched when absent.
func (r *AllowedUserRepository) FindByMobile(ctx context.Context, mobile string) (*models.AllowedUser, error) {
	const query = `SELECT id, mobile, name, userid, created_at FROM allowed_user WHERE mobile = $1`
	var user models.AllowedUser
	if err := r.db.GetContext(ctx, &user, query, mobile); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new allowed user and stores the generated id on it.
func (r *AllowedUserRepository) Create(ctx context.Context, user *models.AllowedUser) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO allowed_user (mobile, name, userid, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, user.Mobile, user.Name, user.UserID, user.CreatedAt).Scan(&user.ID); err != nil {
		return fmt.Errorf("create allowed user: %w", err)
	}
	return nil
}

// DeleteByMobile removes an allowed user, returning sql.ErrNoRows when nothing matched.
func (r *AllowedUserRepository) DeleteByMobile(ctx context.Context, mobile string) error {
	const query = `DELETE FROM allowed_user WHERE mobile = $1`
	res, err := r.db.ExecContext(ctx, query, mobile)
	if err != nil {
		return fmt.Errorf("delete allowed user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete allowed user: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AttachUserID records the DingTalk user id of an allowed mobile once it is known.
func (r *AllowedUserRepository) AttachUserID(ctx context.Context, mobile, userID string) error {
	const query = `UPDATE allowed_user SET userid = $2 WHERE mobile = $1 AND (userid IS NULL OR userid = '')`
	if _, err := r.db.ExecContext(ctx, query, mobile, userID); err != nil {
		return fmt.Errorf("attach user id to allowed user: %w", err)
	}
	return nil
}
