package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/models"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, role, organization_id, created_at, updated_at`

// CreateUser inserts user, assigning its ID and timestamps. PasswordHash must
// already be set.
func (s *SQLDatabase) CreateUser(ctx context.Context, user *models.User) error {
	if err := required(map[string]string{
		"name":         user.Name,
		"email":        user.Email,
		"password":     user.PasswordHash,
		"organization": user.OrganizationID,
	}); err != nil {
		return err
	}
	if !user.Role.Valid() {
		return apperr.Validation("Invalid role")
	}

	now := s.now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role),
		user.OrganizationID, formatTime(now), formatTime(now),
	)
	if err != nil {
		return s.classify(err, "create user")
	}
	return nil
}

// GetUserByID returns the user with id, or nil if none exists.
func (s *SQLDatabase) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail returns the user registered with email, or nil.
func (s *SQLDatabase) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLDatabase) getUser(ctx context.Context, column, value string) (*models.User, error) {
	row := s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns the users matching filter in creation order.
func (s *SQLDatabase) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OrganizationID != "" {
		conds = append(conds, "organization_id = ?")
		args = append(args, filter.OrganizationID)
	}
	if filter.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, filter.Email)
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, string(filter.Role))
	}

	rows, err := s.query(ctx, `SELECT `+userColumns+` FROM users`+where(conds)+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser applies patch and returns the stored result, or nil if the user
// does not exist. Changing the email to one in use yields ErrEmailInUse;
// promoting a second user to Admin yields ErrAdminExists.
func (s *SQLDatabase) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return s.GetUserByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		if err := required(map[string]string{"name": *patch.Name}); err != nil {
			return nil, err
		}
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		if err := required(map[string]string{"email": *patch.Email}); err != nil {
			return nil, err
		}
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperr.Validation("Invalid role")
		}
		sets = append(sets, "role = ?")
		args = append(args, string(*patch.Role))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(s.now()), id)

	res, err := s.exec(ctx, `UPDATE users SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, s.classify(err, "update user")
	}
	if ok, err := rowsAffected(res); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	} else if !ok {
		return nil, nil
	}
	return s.GetUserByID(ctx, id)
}

// DeleteUser removes the user. Tasks that reference the user are left in place.
func (s *SQLDatabase) DeleteUser(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return rowsAffected(res)
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user                 models.User
		role                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role,
		&user.OrganizationID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
