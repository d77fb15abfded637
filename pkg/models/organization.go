package models

import "time"

// Organization is a tenant. Users and tasks belong to exactly one organization.
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizationPatch carries the fields of a partial organization update.
type OrganizationPatch struct {
	Name *string
}

// OrganizationSummary is the {id, name} shape embedded in user and task views.
type OrganizationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary returns the embedded representation of the organization.
func (o *Organization) Summary() *OrganizationSummary {
	if o == nil {
		return nil
	}
	return &OrganizationSummary{ID: o.ID, Name: o.Name}
}
