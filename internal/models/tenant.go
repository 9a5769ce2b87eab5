package models

import (
	"strings"
	"time"
)

// Tenant is an isolated account boundary. All business records hang off a
// tenant; users never see data from a tenant other than their own.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantNameForEmail derives a display name for a freshly provisioned tenant
// from the invitee's address: the local part before the first "@", or the
// whole string when no "@" is present.
func TenantNameForEmail(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}
