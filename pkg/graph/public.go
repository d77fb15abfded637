package graph

import (
	"taskhub-backend/pkg/auth"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// IsPublicRequest reports whether every root field of the operation selected
// by operationName is callable without authentication. Unparseable documents,
// fragments and ambiguous operation selections are not public.
func IsPublicRequest(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}

	var selected *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" {
			if selected != nil {
				return false
			}
			selected = op
			continue
		}
		if op.Name != nil && op.Name.Value == operationName {
			selected = op
		}
	}
	if selected == nil || selected.SelectionSet == nil || len(selected.SelectionSet.Selections) == 0 {
		return false
	}

	for _, sel := range selected.SelectionSet.Selections {
		field, ok := sel.(*ast.Field)
		if !ok || field.Name == nil {
			return false
		}
		if field.Name.Value == "__typename" {
			continue
		}
		if !auth.IsPublic(auth.Operation(field.Name.Value)) {
			return false
		}
	}
	return true
}
