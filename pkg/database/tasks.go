package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub-backend/pkg/models"

	"github.com/google/uuid"
)

const taskColumns = `id, title, description, status, due_date, organization_id, created_by, assigned_to, created_at, updated_at`

// CreateTask inserts task, assigning its ID and timestamps. An empty status
// becomes models.DefaultTaskStatus.
func (s *SQLDatabase) CreateTask(ctx context.Context, task *models.Task) error {
	if err := required(map[string]string{
		"title":        task.Title,
		"description":  task.Description,
		"organization": task.OrganizationID,
		"createdBy":    task.CreatedBy,
		"assignedTo":   task.AssignedTo,
	}); err != nil {
		return err
	}
	if task.Status == "" {
		task.Status = models.DefaultTaskStatus
	}

	now := s.now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, task.Status, nullTime(task.DueDate),
		task.OrganizationID, task.CreatedBy, task.AssignedTo, formatTime(now), formatTime(now),
	)
	if err != nil {
		return s.classify(err, "create task")
	}
	return nil
}

// GetTask returns the task with id, or nil if none exists.
func (s *SQLDatabase) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasks returns the tasks matching filter in creation order.
func (s *SQLDatabase) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OrganizationID != "" {
		conds = append(conds, "organization_id = ?")
		args = append(args, filter.OrganizationID)
	}
	if filter.AssignedTo != "" {
		conds = append(conds, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}

	rows, err := s.query(ctx, `SELECT `+taskColumns+` FROM tasks`+where(conds)+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies patch and returns the stored result, or nil if the task
// does not exist.
func (s *SQLDatabase) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return s.GetTask(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		if err := required(map[string]string{"title": *patch.Title}); err != nil {
			return nil, err
		}
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		if err := required(map[string]string{"description": *patch.Description}); err != nil {
			return nil, err
		}
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		status := *patch.Status
		if status == "" {
			status = models.DefaultTaskStatus
		}
		sets = append(sets, "status = ?")
		args = append(args, status)
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, nullTime(patch.DueDate))
	} else if patch.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	}
	if patch.AssignedTo != nil {
		if err := required(map[string]string{"assignedTo": *patch.AssignedTo}); err != nil {
			return nil, err
		}
		sets = append(sets, "assigned_to = ?")
		args = append(args, *patch.AssignedTo)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(s.now()), id)

	res, err := s.exec(ctx, `UPDATE tasks SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, s.classify(err, "update task")
	}
	if ok, err := rowsAffected(res); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	} else if !ok {
		return nil, nil
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes the task.
func (s *SQLDatabase) DeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return rowsAffected(res)
}

func scanTask(row scanner) (*models.Task, error) {
	var (
		task                 models.Task
		dueDate              sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &dueDate,
		&task.OrganizationID, &task.CreatedBy, &task.AssignedTo, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if task.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &task, nil
}
