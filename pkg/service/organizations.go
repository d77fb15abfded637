package service

import (
	"context"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/models"
	"taskhub-backend/pkg/validation"
)

var errOrganizationNotFound = apperr.NotFound("Organization not found")

// GetOrganizations lists every organization.
func (s *Service) GetOrganizations(ctx context.Context, actor *models.Actor) Response[[]models.Organization] {
	const op = auth.OpGetOrganizations
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[[]models.Organization](s, op, "fetching organizations", err, nil)
	}

	orgs, err := s.store.ListOrganizations(ctx, database.OrganizationFilter{})
	if err != nil {
		return fail[[]models.Organization](s, op, "fetching organizations", err, nil)
	}
	return ok(s, op, "Organizations fetched successfully", orgs)
}

// GetOrganization fetches one organization by id.
func (s *Service) GetOrganization(ctx context.Context, actor *models.Actor, id string) Response[*models.Organization] {
	const op = auth.OpGetOrganization
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.Organization](s, op, "fetching organization", err, nil)
	}

	org, err := s.store.GetOrganization(ctx, id)
	if err != nil {
		return fail[*models.Organization](s, op, "fetching organization", err, nil)
	}
	if org == nil || (s.policy.TenantScopedReads && org.ID != actor.OrganizationID) {
		return fail[*models.Organization](s, op, "fetching organization", errOrganizationNotFound, nil)
	}
	return ok(s, op, "Organization fetched successfully", org)
}

// CreateOrganization creates an organization named name.
func (s *Service) CreateOrganization(ctx context.Context, actor *models.Actor, name string) Response[*models.Organization] {
	const op = auth.OpCreateOrganization
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.Organization](s, op, "creating organization", err, nil)
	}
	input := struct {
		Name string `json:"name" validate:"required"`
	}{name}
	if err := validation.Struct(&input); err != nil {
		return fail[*models.Organization](s, op, "creating organization", err, nil)
	}

	org := &models.Organization{Name: name}
	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return fail[*models.Organization](s, op, "creating organization", err, nil)
	}
	s.logger.Info().Str("organization_id", org.ID).Msg("organization created")
	return ok(s, op, "Organization created successfully", org)
}

// UpdateOrganization renames an organization.
func (s *Service) UpdateOrganization(ctx context.Context, actor *models.Actor, id, name string) Response[*models.Organization] {
	const op = auth.OpUpdateOrganization
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.Organization](s, op, "updating organization", err, nil)
	}
	input := struct {
		ID   string `json:"id" validate:"required"`
		Name string `json:"name" validate:"required"`
	}{id, name}
	if err := validation.Struct(&input); err != nil {
		return fail[*models.Organization](s, op, "updating organization", err, nil)
	}

	org, err := s.store.UpdateOrganization(ctx, id, models.OrganizationPatch{Name: &name})
	if err != nil {
		return fail[*models.Organization](s, op, "updating organization", err, nil)
	}
	if org == nil {
		return fail[*models.Organization](s, op, "updating organization", errOrganizationNotFound, nil)
	}
	return ok(s, op, "Organization updated successfully", org)
}

// DeleteOrganization removes an organization. Its users and tasks are kept.
func (s *Service) DeleteOrganization(ctx context.Context, actor *models.Actor, id string) Result {
	const op = auth.OpDeleteOrganization
	if err := s.policy.Authorize(actor, op); err != nil {
		return failed(s, op, "deleting organization", err)
	}

	deleted, err := s.store.DeleteOrganization(ctx, id)
	if err != nil {
		return failed(s, op, "deleting organization", err)
	}
	if !deleted {
		return failed(s, op, "deleting organization", errOrganizationNotFound)
	}
	s.logger.Info().Str("organization_id", id).Msg("organization deleted")
	return done(s, op, "Organization deleted successfully")
}
