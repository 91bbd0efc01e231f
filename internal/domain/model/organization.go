package model

import "time"

// Organization is a tenant identity supplied by the host application. The ID
// is opaque and caller-chosen.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultOrganizationName returns the display name used when the host does
// not send one.
func DefaultOrganizationName(id string) string {
	return "Organization " + id
}
