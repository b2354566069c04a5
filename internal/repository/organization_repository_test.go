package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

func TestOrganizationRepositoryChildDepartments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrganizationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM department d WHERE d.parent_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"dept_id", "name", "parent_id", "has_children"}).
			AddRow(2, "研发部", 1, true).
			AddRow(3, "行政部", 1, false))

	departments, err := repo.ChildDepartments(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.True(t, departments[0].HasChildren)
	require.NotNil(t, departments[1].ParentID)
	assert.EqualValues(t, 1, *departments[1].ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepositoryDescendantDepartmentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrganizationRepository(db)

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"dept_id"}).AddRow(2).AddRow(5).AddRow(9))
	ids, err := repo.DescendantDepartmentIDs(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5, 9}, ids)

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"dept_id"}))
	ids, err = repo.DescendantDepartmentIDs(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, []int64{404}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepositoryListEmployees(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrganizationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT userid, name, dept_id, dept_name, avatar FROM employee WHERE 1=1 AND dept_id = ANY($1) AND LOWER(name) LIKE $2 ORDER BY userid ASC")).
		WithArgs(sqlmock.AnyArg(), "%张%").
		WillReturnRows(sqlmock.NewRows([]string{"userid", "name", "dept_id", "dept_name", "avatar"}).
			AddRow("u1", "张三", 2, "研发部", nil))

	employees, err := repo.ListEmployees(context.Background(), models.EmployeeFilter{DeptIDs: []int64{2, 5}, Name: " 张 "})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "研发部", employees[0].Dept())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepositoryFindEmployeeNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrganizationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM employee WHERE userid = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindEmployee(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
