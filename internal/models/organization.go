package models

// Department mirrors the synced department table.
type Department struct {
	ID          int64  `db:"dept_id" json:"deptId"`
	Name        string `db:"name" json:"name"`
	ParentID    *int64 `db:"parent_id" json:"parentId,omitempty"`
	HasChildren bool   `db:"has_children" json:"hasChildren"`
}

// Employee mirrors the synced employee table.
type Employee struct {
	UserID   string  `db:"userid" json:"userId"`
	Name     string  `db:"name" json:"name"`
	DeptID   int64   `db:"dept_id" json:"deptId"`
	DeptName *string `db:"dept_name" json:"deptName,omitempty"`
	Avatar   *string `db:"avatar" json:"avatar,omitempty"`
}

// Dept returns the department label, empty when unknown.
func (e Employee) Dept() string {
	if e.DeptName == nil {
		return ""
	}
	return *e.DeptName
}

// EmployeeFilter scopes employee reads.
type EmployeeFilter struct {
	DeptIDs []int64
	Name    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"total"`
}
