package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
)

// OrganizationRepository reads the synced department and employee tables.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository constructs an OrganizationRepository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// ChildDepartments lists the direct children of parentID.
func (r *OrganizationRepository) ChildDepartments(ctx context.Context, parentID int64) ([]models.Department, error) {
	const query = `SELECT d.dept_id, d.name, d.parent_id,
EXISTS (SELECT 1 FROM department c WHERE c.parent_id = d.dept_id) AS has_children
FROM department d WHERE d.parent_id = $1 ORDER BY d.name ASC, d.dept_id ASC`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query, parentID); err != nil {
		return nil, fmt.Errorf("list child departments of %d: %w", parentID, err)
	}
	return departments, nil
}

// DescendantDepartmentIDs returns deptID and every department below it.
func (r *OrganizationRepository) DescendantDepartmentIDs(ctx context.Context, deptID int64) ([]int64, error) {
	const query = `WITH RECURSIVE tree AS (
SELECT dept_id FROM department WHERE dept_id = $1
UNION
SELECT d.dept_id FROM department d JOIN tree t ON d.parent_id = t.dept_id
) SELECT dept_id FROM tree`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, deptID); err != nil {
		return nil, fmt.Errorf("list descendant departments of %d: %w", deptID, err)
	}
	if len(ids) == 0 {
		ids = []int64{deptID}
	}
	return ids, nil
}

// ListEmployees returns employees matching the filter.
func (r *OrganizationRepository) ListEmployees(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	base := "SELECT userid, name, dept_id, dept_name, avatar FROM employee WHERE 1=1"
	var conditions []string
	var args []interface{}

	if len(filter.DeptIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("dept_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.DeptIDs))
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(name)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, base+" ORDER BY userid ASC", args...); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// FindEmployee fetches an employee by DingTalk user id.
func (r *OrganizationRepository) FindEmployee(ctx context.Context, userID string) (*models.Employee, error) {
	const query = `SELECT userid, name, dept_id, dept_name, avatar FROM employee WHERE userid = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, userID); err != nil {
		return nil, err
	}
	return &employee, nil
}
