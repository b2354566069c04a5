package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var leaveRecordMockColumns = []string{"id", "userid", "start_time", "end_time", "duration_percent", "duration_unit", "leave_type", "leave_code", "status"}

func TestLeaveRepositoryListRecordsOverlap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	rows := sqlmock.NewRows(leaveRecordMockColumns).
		AddRow(1, "u1", int64(1735689600000), int64(1735718400000), 100, "percent_day", "年假", "c1", "已审批").
		AddRow(2, "u2", int64(1735776000000), int64(1735790400000), 400, "percent_hour", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+leaveRecordColumns+" FROM leave_record WHERE end_time >= $1 AND start_time <= $2 AND userid = ANY($3) ORDER BY start_time ASC, id ASC")).
		WithArgs(int64(10), int64(20), sqlmock.AnyArg()).
		WillReturnRows(rows)

	records, err := repo.ListRecords(context.Background(), models.LeaveRecordFilter{FromMs: 10, ToMs: 20, UserIDs: []string{"u1", "u2"}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "年假", records[0].TypeName())
	assert.Equal(t, models.DurationPercentHour, records[1].DurationUnit)
	assert.Equal(t, models.DefaultLeaveTypeName, records[1].TypeName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryListRecordsStartOnlyWithTypes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE start_time >= $1 AND start_time <= $2 AND leave_type = ANY($3)")).
		WithArgs(int64(1), int64(2), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(leaveRecordMockColumns))

	records, err := repo.ListRecords(context.Background(), models.LeaveRecordFilter{FromMs: 1, ToMs: 2, StartOnly: true, LeaveTypes: []string{"病假"}})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryListTypes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT leave_code, leave_name, leave_view_unit, COALESCE(hours_in_per_day, 800) AS hours_in_per_day FROM leave_type")).
		WillReturnRows(sqlmock.NewRows([]string{"leave_code", "leave_name", "leave_view_unit", "hours_in_per_day"}).
			AddRow("c1", "年假", "day", 800).
			AddRow("c2", "调休", "halfDay", 1200))

	types, err := repo.ListTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.EqualValues(t, 1200, types[1].HoursInPerDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}
