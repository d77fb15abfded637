package graph

import (
	"time"

	"taskhub-backend/pkg/models"

	"github.com/graphql-go/graphql"
)

func (s *Schema) defineOrganizationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Organization",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
}

// defineUserType serves both full user views and the {id, name} references
// embedded in tasks, so the remaining fields are nullable. organization is
// null when the organization has been deleted.
func (s *Schema) defineUserType(organization *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":        &graphql.Field{Type: graphql.String},
			"organization": &graphql.Field{Type: organization},
			"role": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if u, ok := p.Source.(*models.UserView); ok {
						return string(u.Role), nil
					}
					return nil, nil
				},
			},
		},
	})
}

func (s *Schema) defineTaskType(organization, user *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Task",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"status":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"dueDate": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					t, ok := p.Source.(*models.TaskView)
					if !ok || t.DueDate == nil {
						return nil, nil
					}
					return t.DueDate.UTC().Format(time.RFC3339), nil
				},
			},
			"organization": &graphql.Field{Type: organization},
			"createdBy":    &graphql.Field{Type: user},
			"assignedTo":   &graphql.Field{Type: user},
		},
	})
}
