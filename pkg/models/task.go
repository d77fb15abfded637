package models

import "time"

// DefaultTaskStatus is used when a task is created without a status.
const DefaultTaskStatus = "Pending"

// Task is a unit of work inside an organization. OrganizationID and CreatedBy
// are fixed at creation.
type Task struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	Status         string     `json:"status" db:"status"`
	DueDate        *time.Time `json:"due_date,omitempty" db:"due_date"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	AssignedTo     string     `json:"assigned_to" db:"assigned_to"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// TaskPatch carries the mutable task fields. Organization and creator are
// intentionally absent.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
	AssignedTo  *string

	// ClearDueDate removes the due date. DueDate wins when both are set.
	ClearDueDate bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.DueDate == nil &&
		p.AssignedTo == nil && !p.ClearDueDate
}

// TaskView is a task joined with its organization, creator and assignee.
// References are nil when the target row no longer exists.
type TaskView struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Status       string               `json:"status"`
	DueDate      *time.Time           `json:"dueDate"`
	Organization *OrganizationSummary `json:"organization"`
	CreatedBy    *UserSummary         `json:"createdBy"`
	AssignedTo   *UserSummary         `json:"assignedTo"`
}

// NewTaskView joins t with its related rows.
func NewTaskView(t *Task, org *Organization, creator, assignee *User) *TaskView {
	return &TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		DueDate:      t.DueDate,
		Organization: org.Summary(),
		CreatedBy:    creator.Summary(),
		AssignedTo:   assignee.Summary(),
	}
}
