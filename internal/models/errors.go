package models

import "errors"

var (
	// ErrInvitationPending signals that a valid invitation already exists
	// for the target email. Expected business condition, not a fault.
	ErrInvitationPending = errors.New("an invitation is already pending for this email")

	// ErrDuplicateEmail signals that a credential already exists for the
	// email address.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
