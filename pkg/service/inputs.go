package service

import (
	"strings"
	"time"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/models"
)

// RegisterInput holds the arguments of register.
type RegisterInput struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required"`
	OrganizationID string  `json:"organizationId" validate:"required"`
	Role           *string `json:"role,omitempty"`
}

// LoginInput holds the arguments of login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput holds the arguments of updateUser. Nil fields are unchanged.
type UpdateUserInput struct {
	ID    string  `json:"id" validate:"required"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Role  *string `json:"role,omitempty"`
}

// CreateTaskInput holds the arguments of createTask.
type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	AssignedTo  string  `json:"assignedTo" validate:"required"`
}

// UpdateTaskInput holds the arguments of updateTask. Nil fields are unchanged.
type UpdateTaskInput struct {
	ID          string  `json:"id" validate:"required"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

func parseRole(s *string, fallback models.Role) (models.Role, error) {
	if s == nil {
		return fallback, nil
	}
	role, err := models.ParseRole(*s)
	if err != nil {
		return "", apperr.Validation("Invalid role")
	}
	return role, nil
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDueDate accepts RFC 3339 timestamps and plain dates. Nil or blank input
// means no due date.
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Validation("Invalid dueDate")
}
