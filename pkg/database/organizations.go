package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub-backend/pkg/models"

	"github.com/google/uuid"
)

const organizationColumns = `id, name, created_at, updated_at`

// CreateOrganization inserts org, assigning its ID and timestamps.
func (s *SQLDatabase) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if err := required(map[string]string{"name": org.Name}); err != nil {
		return err
	}

	now := s.now().UTC()
	org.ID = uuid.NewString()
	org.CreatedAt = now
	org.UpdatedAt = now

	_, err := s.exec(ctx,
		`INSERT INTO organizations (`+organizationColumns+`) VALUES (?, ?, ?, ?)`,
		org.ID, org.Name, formatTime(now), formatTime(now),
	)
	if err != nil {
		return s.classify(err, "create organization")
	}
	return nil
}

// GetOrganization returns the organization with id, or nil if none exists.
func (s *SQLDatabase) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	row := s.queryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id)
	org, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// ListOrganizations returns every organization in creation order.
func (s *SQLDatabase) ListOrganizations(ctx context.Context, _ OrganizationFilter) ([]models.Organization, error) {
	rows, err := s.query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}

// UpdateOrganization applies patch and returns the stored result, or nil if
// the organization does not exist.
func (s *SQLDatabase) UpdateOrganization(ctx context.Context, id string, patch models.OrganizationPatch) (*models.Organization, error) {
	if patch.Name != nil {
		if err := required(map[string]string{"name": *patch.Name}); err != nil {
			return nil, err
		}
		res, err := s.exec(ctx,
			`UPDATE organizations SET name = ?, updated_at = ? WHERE id = ?`,
			*patch.Name, formatTime(s.now()), id,
		)
		if err != nil {
			return nil, s.classify(err, "update organization")
		}
		if ok, err := rowsAffected(res); err != nil {
			return nil, fmt.Errorf("failed to update organization: %w", err)
		} else if !ok {
			return nil, nil
		}
	}
	return s.GetOrganization(ctx, id)
}

// DeleteOrganization removes the organization. Users and tasks that reference
// it are left in place.
func (s *SQLDatabase) DeleteOrganization(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete organization: %w", err)
	}
	return rowsAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row scanner) (*models.Organization, error) {
	var (
		org                  models.Organization
		createdAt, updatedAt string
	)
	if err := row.Scan(&org.ID, &org.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if org.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if org.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &org, nil
}
