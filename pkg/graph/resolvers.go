package graph

import (
	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/service"

	"github.com/graphql-go/graphql"
)

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// optionalArg distinguishes an omitted argument (nil) from an empty one.
func optionalArg(args map[string]interface{}, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func (s *Schema) resolveGetOrganizations(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.GetOrganizations(p.Context, auth.ActorFromContext(p.Context)), nil
}

func (s *Schema) resolveGetOrganization(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.GetOrganization(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "id")), nil
}

func (s *Schema) resolveGetUsers(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.GetUsers(p.Context, auth.ActorFromContext(p.Context)), nil
}

func (s *Schema) resolveGetUser(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.GetUser(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "id")), nil
}

func (s *Schema) resolveGetTasks(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.GetTasks(p.Context, auth.ActorFromContext(p.Context)), nil
}

func (s *Schema) resolveGetTask(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.GetTask(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "id")), nil
}

func (s *Schema) resolveCreateOrganization(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.CreateOrganization(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "name")), nil
}

func (s *Schema) resolveUpdateOrganization(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.UpdateOrganization(p.Context, auth.ActorFromContext(p.Context),
		stringArg(p.Args, "id"), stringArg(p.Args, "name")), nil
}

func (s *Schema) resolveDeleteOrganization(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.DeleteOrganization(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "id")), nil
}

func (s *Schema) resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.Register(p.Context, service.RegisterInput{
		Name:           stringArg(p.Args, "name"),
		Email:          stringArg(p.Args, "email"),
		Password:       stringArg(p.Args, "password"),
		OrganizationID: stringArg(p.Args, "organizationId"),
		Role:           optionalArg(p.Args, "role"),
	}), nil
}

func (s *Schema) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.Login(p.Context, service.LoginInput{
		Email:    stringArg(p.Args, "email"),
		Password: stringArg(p.Args, "password"),
	}), nil
}

func (s *Schema) resolveUpdateUser(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.UpdateUser(p.Context, auth.ActorFromContext(p.Context), service.UpdateUserInput{
		ID:    stringArg(p.Args, "id"),
		Name:  optionalArg(p.Args, "name"),
		Email: optionalArg(p.Args, "email"),
		Role:  optionalArg(p.Args, "role"),
	}), nil
}

func (s *Schema) resolveDeleteUser(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.DeleteUser(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "id")), nil
}

func (s *Schema) resolveCreateTask(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.CreateTask(p.Context, auth.ActorFromContext(p.Context), service.CreateTaskInput{
		Title:       stringArg(p.Args, "title"),
		Description: stringArg(p.Args, "description"),
		Status:      optionalArg(p.Args, "status"),
		DueDate:     optionalArg(p.Args, "dueDate"),
		AssignedTo:  stringArg(p.Args, "assignedTo"),
	}), nil
}

func (s *Schema) resolveUpdateTask(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.UpdateTask(p.Context, auth.ActorFromContext(p.Context), service.UpdateTaskInput{
		ID:          stringArg(p.Args, "id"),
		Title:       optionalArg(p.Args, "title"),
		Description: optionalArg(p.Args, "description"),
		Status:      optionalArg(p.Args, "status"),
		DueDate:     optionalArg(p.Args, "dueDate"),
		AssignedTo:  optionalArg(p.Args, "assignedTo"),
	}), nil
}

func (s *Schema) resolveDeleteTask(p graphql.ResolveParams) (interface{}, error) {
	return s.svc.DeleteTask(p.Context, auth.ActorFromContext(p.Context), stringArg(p.Args, "id")), nil
}
