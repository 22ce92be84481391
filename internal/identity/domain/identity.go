package domain

import "time"

// Identity links a user to a way of signing in. Only local (email + password) identities exist today.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string // normalised email for local identities
	PasswordHash string
	CreatedAt    time.Time
}

type IdentityProvider string

const IdentityProviderLocal IdentityProvider = "local"
