package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

const leaveRecordColumns = "id, userid, start_time, end_time, duration_percent, duration_unit, leave_type, leave_code, status"

// LeaveRepository reads the synced leave tables. Writes belong to the sync engine.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// ListRecords returns leave records matching the filter ordered by start time.
func (r *LeaveRepository) ListRecords(ctx context.Context, filter models.LeaveRecordFilter) ([]models.LeaveRecordRow, error) {
	var conditions []string
	var args []interface{}

	if filter.StartOnly {
		conditions = append(conditions,
			fmt.Sprintf("start_time >= $%d", len(args)+1),
			fmt.Sprintf("start_time <= $%d", len(args)+2),
		)
	} else {
		conditions = append(conditions,
			fmt.Sprintf("end_time >= $%d", len(args)+1),
			fmt.Sprintf("start_time <= $%d", len(args)+2),
		)
	}
	args = append(args, filter.FromMs, filter.ToMs)

	if len(filter.UserIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("userid = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.UserIDs))
	}
	if len(filter.LeaveTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("leave_type = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.LeaveTypes))
	}

	query := fmt.Sprintf("SELECT %s FROM leave_record WHERE %s ORDER BY start_time ASC, id ASC",
		leaveRecordColumns, strings.Join(conditions, " AND "))
	var records []models.LeaveRecordRow
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list leave records: %w", err)
	}
	return records, nil
}

// ListTypes returns every synced leave type.
func (r *LeaveRepository) ListTypes(ctx context.Context) ([]models.LeaveType, error) {
	const query = `SELECT leave_code, leave_name, leave_view_unit, COALESCE(hours_in_per_day, 800) AS hours_in_per_day FROM leave_type ORDER BY leave_name ASC`
	var types []models.LeaveType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	return types, nil
}
