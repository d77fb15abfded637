// Package graph exposes the operations as a GraphQL schema.
package graph

import (
	"context"
	"fmt"

	"taskhub-backend/pkg/service"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

// Schema is the executable GraphQL schema.
type Schema struct {
	schema graphql.Schema
	svc    *service.Service
	logger zerolog.Logger
}

// NewSchema builds the schema on top of svc.
func NewSchema(svc *service.Service, logger zerolog.Logger) (*Schema, error) {
	s := &Schema{
		svc:    svc,
		logger: logger.With().Str("component", "graphql").Logger(),
	}

	organizationType := s.defineOrganizationType()
	userType := s.defineUserType(organizationType)
	taskType := s.defineTaskType(organizationType, userType)

	organizationsResponse := envelope("OrganizationsResponse", graphql.NewList(organizationType))
	organizationResponse := envelope("OrganizationResponse", organizationType)
	usersResponse := envelope("UsersResponse", graphql.NewList(userType))
	userResponse := envelope("UserResponse", userType)
	tasksResponse := envelope("TasksResponse", graphql.NewList(taskType))
	taskResponse := envelope("TaskResponse", taskType)
	genericResponse := envelope("GenericResponse", nil)
	loginResponse := graphql.NewObject(graphql.ObjectConfig{
		Name: "LoginResponse",
		Fields: graphql.Fields{
			"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"token":   &graphql.Field{Type: graphql.String},
		},
	})

	id := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	requiredString := func() *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	}
	optionalString := func() *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.String}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getOrganizations": &graphql.Field{
				Type:    organizationsResponse,
				Resolve: s.resolveGetOrganizations,
			},
			"getOrganization": &graphql.Field{
				Type:    organizationResponse,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: s.resolveGetOrganization,
			},
			"getUsers": &graphql.Field{
				Type:    usersResponse,
				Resolve: s.resolveGetUsers,
			},
			"getUser": &graphql.Field{
				Type:    userResponse,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: s.resolveGetUser,
			},
			"getTasks": &graphql.Field{
				Type:    tasksResponse,
				Resolve: s.resolveGetTasks,
			},
			"getTask": &graphql.Field{
				Type:    taskResponse,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: s.resolveGetTask,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createOrganization": &graphql.Field{
				Type:    organizationResponse,
				Args:    graphql.FieldConfigArgument{"name": requiredString()},
				Resolve: s.resolveCreateOrganization,
			},
			"updateOrganization": &graphql.Field{
				Type: organizationResponse,
				Args: graphql.FieldConfigArgument{
					"id":   id,
					"name": requiredString(),
				},
				Resolve: s.resolveUpdateOrganization,
			},
			"deleteOrganization": &graphql.Field{
				Type:    genericResponse,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: s.resolveDeleteOrganization,
			},
			"register": &graphql.Field{
				Type: userResponse,
				Args: graphql.FieldConfigArgument{
					"name":           requiredString(),
					"email":          requiredString(),
					"password":       requiredString(),
					"organizationId": id,
					"role":           optionalString(),
				},
				Resolve: s.resolveRegister,
			},
			"login": &graphql.Field{
				Type: loginResponse,
				Args: graphql.FieldConfigArgument{
					"email":    requiredString(),
					"password": requiredString(),
				},
				Resolve: s.resolveLogin,
			},
			"updateUser": &graphql.Field{
				Type: userResponse,
				Args: graphql.FieldConfigArgument{
					"id":    id,
					"name":  optionalString(),
					"email": optionalString(),
					"role":  optionalString(),
				},
				Resolve: s.resolveUpdateUser,
			},
			"deleteUser": &graphql.Field{
				Type:    genericResponse,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: s.resolveDeleteUser,
			},
			"createTask": &graphql.Field{
				Type: taskResponse,
				Args: graphql.FieldConfigArgument{
					"title":       requiredString(),
					"description": requiredString(),
					"status":      optionalString(),
					"dueDate":     optionalString(),
					"assignedTo":  id,
				},
				Resolve: s.resolveCreateTask,
			},
			"updateTask": &graphql.Field{
				Type: taskResponse,
				Args: graphql.FieldConfigArgument{
					"id":          id,
					"title":       optionalString(),
					"description": optionalString(),
					"status":      optionalString(),
					"dueDate":     optionalString(),
					"assignedTo":  &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: s.resolveUpdateTask,
			},
			"deleteTask": &graphql.Field{
				Type:    genericResponse,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: s.resolveDeleteTask,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	s.schema = schema
	return s, nil
}

// Request is a GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Execute runs req. The caller's actor, if any, travels in ctx.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// envelope defines a {success, message, data} response type. A nil data type
// yields the payload-free variant.
func envelope(name string, data graphql.Output) *graphql.Object {
	fields := graphql.Fields{
		"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	}
	if data != nil {
		fields["data"] = &graphql.Field{Type: data}
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}
