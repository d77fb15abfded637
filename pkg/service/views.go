package service

import (
	"context"

	"taskhub-backend/pkg/models"
)

// joiner resolves the organizations and users referenced by a result. Lookups
// are cached for the duration of one operation; missing rows resolve to nil.
type joiner struct {
	ctx   context.Context
	s     *Service
	orgs  map[string]*models.Organization
	users map[string]*models.User
}

func (s *Service) joiner(ctx context.Context) *joiner {
	return &joiner{
		ctx:   ctx,
		s:     s,
		orgs:  make(map[string]*models.Organization),
		users: make(map[string]*models.User),
	}
}

func (j *joiner) organization(id string) (*models.Organization, error) {
	if org, ok := j.orgs[id]; ok {
		return org, nil
	}
	org, err := j.s.store.GetOrganization(j.ctx, id)
	if err != nil {
		return nil, err
	}
	j.orgs[id] = org
	return org, nil
}

func (j *joiner) user(id string) (*models.User, error) {
	if u, ok := j.users[id]; ok {
		return u, nil
	}
	u, err := j.s.store.GetUserByID(j.ctx, id)
	if err != nil {
		return nil, err
	}
	j.users[id] = u
	return u, nil
}

func (j *joiner) userView(u *models.User) (*models.UserView, error) {
	org, err := j.organization(u.OrganizationID)
	if err != nil {
		return nil, err
	}
	return models.NewUserView(u, org), nil
}

func (j *joiner) taskView(t *models.Task) (*models.TaskView, error) {
	org, err := j.organization(t.OrganizationID)
	if err != nil {
		return nil, err
	}
	creator, err := j.user(t.CreatedBy)
	if err != nil {
		return nil, err
	}
	assignee, err := j.user(t.AssignedTo)
	if err != nil {
		return nil, err
	}
	return models.NewTaskView(t, org, creator, assignee), nil
}
