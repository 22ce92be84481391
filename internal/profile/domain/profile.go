// Package domain holds the marketplace profile attached to every user account.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is a profile's marketplace role. Roles are ordered: buyer < lister < admin.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleLister Role = "lister"
	RoleAdmin  Role = "admin"
)

var roleLevel = map[Role]int{
	RoleBuyer:  1,
	RoleLister: 2,
	RoleAdmin:  3,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

// ParseRole parses a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", errors.New("role must be buyer, lister or admin")
	}
	return r, nil
}

// HasRole reports whether role is at least required in the hierarchy. Unknown roles never qualify.
func HasRole(role, required Role) bool {
	have, ok := roleLevel[role]
	if !ok {
		return false
	}
	return have >= roleLevel[required]
}

// Profile is the public face of a user: display name, contact phone and marketplace role.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"displayName"`
	Phone       *string   `json:"phone"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the profile has the admin role.
func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// IsLister reports whether the profile may create listings (lister or admin).
func (p *Profile) IsLister() bool { return p != nil && HasRole(p.Role, RoleLister) }

// Summary is the owner block embedded in listing responses.
type Summary struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	IsVerified  bool    `json:"isVerified"`
	Phone       *string `json:"phone"`
}

// Summary returns the listing-embedded view of p.
func (p *Profile) Summary() Summary {
	return Summary{ID: p.ID, DisplayName: p.DisplayName, IsVerified: p.IsVerified, Phone: p.Phone}
}

// UserListItem is a profile joined with its account email for the admin users page.
type UserListItem struct {
	Profile
	Email        string `json:"email"`
	ListingCount int    `json:"listingCount"`
}
