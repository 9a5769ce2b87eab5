package models

import "time"

// InvitationTTL is the fixed lifetime of an invitation. It is set once at
// creation time and never recomputed.
const InvitationTTL = 24 * time.Hour

// Invitation represents a pending or resolved offer to create a new tenant
// account. TenantID identifies the inviter's account; the invitee's account
// is a separate tenant created at redemption time.
type Invitation struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	Email           string     `json:"email"`
	TokenHash       string     `json:"-"`
	InvitedByUserID string     `json:"invited_by_user_id"`
	ExpiresAt       time.Time  `json:"expires_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsExpired determines whether the invitation has expired.
func (i Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsAccepted indicates whether the invitation has already been consumed.
func (i Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// IsValid reports whether the invitation can still be redeemed.
func (i Invitation) IsValid(now time.Time) bool {
	return !i.IsAccepted() && !i.IsExpired(now)
}
