package service

import (
	"context"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/models"
	"taskhub-backend/pkg/validation"
)

var (
	errTaskNotFound        = apperr.NotFound("Task not found")
	errAssigneeNotFound    = apperr.NotFound("Assigned user not found")
	errOrganizationUnknown = apperr.Unauthenticated("User's organization is not available")
)

// GetTasks lists the tasks of the caller's organization. The data is an empty
// list on failure.
func (s *Service) GetTasks(ctx context.Context, actor *models.Actor) Response[[]*models.TaskView] {
	const op, action = auth.OpGetTasks, "fetching tasks"
	empty := []*models.TaskView{}
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail(s, op, action, err, empty)
	}
	if actor.OrganizationID == "" {
		return fail(s, op, action, errOrganizationUnknown, empty)
	}

	tasks, err := s.store.ListTasks(ctx, database.TaskFilter{OrganizationID: actor.OrganizationID})
	if err != nil {
		return fail(s, op, action, err, empty)
	}

	j := s.joiner(ctx)
	views := make([]*models.TaskView, 0, len(tasks))
	for i := range tasks {
		view, err := j.taskView(&tasks[i])
		if err != nil {
			return fail(s, op, action, err, empty)
		}
		views = append(views, view)
	}
	return ok(s, op, "Tasks fetched successfully", views)
}

// GetTask fetches one task with its organization, creator and assignee.
func (s *Service) GetTask(ctx context.Context, actor *models.Actor, id string) Response[*models.TaskView] {
	const op, action = auth.OpGetTask, "fetching task"
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	if task == nil || (s.policy.TenantScopedReads && task.OrganizationID != actor.OrganizationID) {
		return fail[*models.TaskView](s, op, action, errTaskNotFound, nil)
	}

	view, err := s.joiner(ctx).taskView(task)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	return ok(s, op, "Task fetched successfully", view)
}

// CreateTask creates a task in the caller's organization, created by the
// caller and assigned to an existing user.
func (s *Service) CreateTask(ctx context.Context, actor *models.Actor, input CreateTaskInput) Response[*models.TaskView] {
	const op, action = auth.OpCreateTask, "creating task"
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	if err := validation.Struct(&input); err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}

	assignee, err := s.store.GetUserByID(ctx, input.AssignedTo)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	if assignee == nil {
		return fail[*models.TaskView](s, op, action, errAssigneeNotFound, nil)
	}

	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		DueDate:        dueDate,
		OrganizationID: actor.OrganizationID,
		CreatedBy:      actor.UserID,
		AssignedTo:     assignee.ID,
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	s.logger.Info().Str("task_id", task.ID).Str("assigned_to", assignee.ID).Msg("task created")

	stored, err := s.store.GetTask(ctx, task.ID)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	if stored == nil {
		return fail[*models.TaskView](s, op, action, errTaskNotFound, nil)
	}
	view, err := s.joiner(ctx).taskView(stored)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	return ok(s, op, "Task created successfully", view)
}

// UpdateTask changes the mutable fields of a task. A supplied assignee must
// exist or nothing is written.
func (s *Service) UpdateTask(ctx context.Context, actor *models.Actor, input UpdateTaskInput) Response[*models.TaskView] {
	const op, action = auth.OpUpdateTask, "updating task"
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	if err := validation.Struct(&input); err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}

	patch := models.TaskPatch{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     dueDate,
	}
	// An explicit empty dueDate clears it; an omitted one leaves it alone.
	patch.ClearDueDate = input.DueDate != nil && dueDate == nil
	if input.AssignedTo != nil && *input.AssignedTo != "" {
		assignee, err := s.store.GetUserByID(ctx, *input.AssignedTo)
		if err != nil {
			return fail[*models.TaskView](s, op, action, err, nil)
		}
		if assignee == nil {
			return fail[*models.TaskView](s, op, action, errAssigneeNotFound, nil)
		}
		patch.AssignedTo = &assignee.ID
	}

	task, err := s.store.UpdateTask(ctx, input.ID, patch)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	if task == nil {
		return fail[*models.TaskView](s, op, action, errTaskNotFound, nil)
	}

	view, err := s.joiner(ctx).taskView(task)
	if err != nil {
		return fail[*models.TaskView](s, op, action, err, nil)
	}
	return ok(s, op, "Task updated successfully", view)
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, actor *models.Actor, id string) Result {
	const op, action = auth.OpDeleteTask, "deleting task"
	if err := s.policy.Authorize(actor, op); err != nil {
		return failed(s, op, action, err)
	}

	deleted, err := s.store.DeleteTask(ctx, id)
	if err != nil {
		return failed(s, op, action, err)
	}
	if !deleted {
		return failed(s, op, action, errTaskNotFound)
	}
	s.logger.Info().Str("task_id", id).Msg("task deleted")
	return done(s, op, "Task deleted successfully")
}
