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
	errUserNotFound       = apperr.NotFound("User not found")
	errInvalidPassword    = apperr.Unauthenticated("Invalid password")
	errInvalidCredentials = apperr.Unauthenticated("Invalid email or password")
)

// Register creates a user in an existing organization. The role defaults to
// User; at most one Admin may exist.
func (s *Service) Register(ctx context.Context, input RegisterInput) Response[*models.UserView] {
	const op, action = auth.OpRegister, "registering user"
	if err := validation.Struct(&input); err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	role, err := parseRole(input.Role, models.RoleUser)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}

	org, err := s.store.GetOrganization(ctx, input.OrganizationID)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	if org == nil {
		return fail[*models.UserView](s, op, action, errOrganizationNotFound, nil)
	}

	if role == models.RoleAdmin {
		admins, err := s.store.ListUsers(ctx, database.UserFilter{Role: models.RoleAdmin})
		if err != nil {
			return fail[*models.UserView](s, op, action, err, nil)
		}
		if len(admins) > 0 {
			return fail[*models.UserView](s, op, action, database.ErrAdminExists, nil)
		}
	}

	existing, err := s.store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	if existing != nil {
		return fail[*models.UserView](s, op, action, database.ErrEmailInUse, nil)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}

	user := &models.User{
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: org.ID,
	}
	// The unique indexes reject a concurrent duplicate that slipped past the
	// checks above with the same messages.
	if err := s.store.CreateUser(ctx, user); err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return ok(s, op, "User registered successfully", models.NewUserView(user, org))
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, input LoginInput) LoginResult {
	const op, action = auth.OpLogin, "logging in"
	if err := validation.Struct(&input); err != nil {
		return LoginResult{Message: s.failure(op, action, err)}
	}

	user, err := s.store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return LoginResult{Message: s.failure(op, action, err)}
	}
	if user == nil {
		if s.unifiedLoginErrors {
			// Spend one comparison so a missing account is not faster to reject.
			s.hasher.Verify(input.Password, s.placeholderHash())
			return LoginResult{Message: s.failure(op, action, errInvalidCredentials)}
		}
		return LoginResult{Message: s.failure(op, action, errUserNotFound)}
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		if s.unifiedLoginErrors {
			return LoginResult{Message: s.failure(op, action, errInvalidCredentials)}
		}
		return LoginResult{Message: s.failure(op, action, errInvalidPassword)}
	}

	token, _, err := s.tokens.IssueToken(user.ID, user.Role, user.OrganizationID)
	if err != nil {
		return LoginResult{Message: s.failure(op, action, err)}
	}
	s.succeeded(op)
	return LoginResult{Success: true, Message: "Login successful", Token: token}
}

func (s *Service) placeholderHash() string {
	s.dummyHashOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	return s.dummyHash
}

// GetUsers lists the users of the caller's organization.
func (s *Service) GetUsers(ctx context.Context, actor *models.Actor) Response[[]*models.UserView] {
	const op, action = auth.OpGetUsers, "fetching users"
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[[]*models.UserView](s, op, action, err, nil)
	}
	// An empty filter would list every tenant's users.
	if actor.OrganizationID == "" {
		return fail[[]*models.UserView](s, op, action, errOrganizationUnknown, nil)
	}

	users, err := s.store.ListUsers(ctx, database.UserFilter{OrganizationID: actor.OrganizationID})
	if err != nil {
		return fail[[]*models.UserView](s, op, action, err, nil)
	}

	j := s.joiner(ctx)
	views := make([]*models.UserView, 0, len(users))
	for i := range users {
		view, err := j.userView(&users[i])
		if err != nil {
			return fail[[]*models.UserView](s, op, action, err, nil)
		}
		views = append(views, view)
	}
	return ok(s, op, "Users fetched successfully", views)
}

// GetUser fetches one user with its organization.
func (s *Service) GetUser(ctx context.Context, actor *models.Actor, id string) Response[*models.UserView] {
	const op, action = auth.OpGetUser, "fetching user"
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	if user == nil || (s.policy.TenantScopedReads && user.OrganizationID != actor.OrganizationID) {
		return fail[*models.UserView](s, op, action, errUserNotFound, nil)
	}

	view, err := s.joiner(ctx).userView(user)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	return ok(s, op, "User fetched successfully", view)
}

// UpdateUser changes a user's name, email or role.
func (s *Service) UpdateUser(ctx context.Context, actor *models.Actor, input UpdateUserInput) Response[*models.UserView] {
	const op, action = auth.OpUpdateUser, "updating user"
	if err := s.policy.Authorize(actor, op); err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	if err := validation.Struct(&input); err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}

	patch := models.UserPatch{Name: input.Name, Email: input.Email}
	if input.Role != nil {
		role, err := parseRole(input.Role, "")
		if err != nil {
			return fail[*models.UserView](s, op, action, err, nil)
		}
		patch.Role = &role

		if role == models.RoleAdmin {
			admins, err := s.store.ListUsers(ctx, database.UserFilter{Role: models.RoleAdmin})
			if err != nil {
				return fail[*models.UserView](s, op, action, err, nil)
			}
			for _, admin := range admins {
				if admin.ID != input.ID {
					return fail[*models.UserView](s, op, action, database.ErrAdminExists, nil)
				}
			}
		}
	}

	if input.Email != nil {
		other, err := s.store.GetUserByEmail(ctx, *input.Email)
		if err != nil {
			return fail[*models.UserView](s, op, action, err, nil)
		}
		if other != nil && other.ID != input.ID {
			return fail[*models.UserView](s, op, action, database.ErrEmailInUse, nil)
		}
	}

	user, err := s.store.UpdateUser(ctx, input.ID, patch)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	if user == nil {
		return fail[*models.UserView](s, op, action, errUserNotFound, nil)
	}

	view, err := s.joiner(ctx).userView(user)
	if err != nil {
		return fail[*models.UserView](s, op, action, err, nil)
	}
	return ok(s, op, "User updated successfully", view)
}

// DeleteUser removes a user. Tasks referencing the user are kept.
func (s *Service) DeleteUser(ctx context.Context, actor *models.Actor, id string) Result {
	const op, action = auth.OpDeleteUser, "deleting user"
	if err := s.policy.Authorize(actor, op); err != nil {
		return failed(s, op, action, err)
	}

	deleted, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return failed(s, op, action, err)
	}
	if !deleted {
		return failed(s, op, action, errUserNotFound)
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return done(s, op, "User deleted successfully")
}
