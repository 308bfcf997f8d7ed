package domain

import "time"

// Role is a back-office staff role.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleAgent      Role = "AGENT"
)

var roleRank = map[Role]int{
	RoleAgent:      1,
	RoleAccountant: 2,
	RoleAdmin:      3,
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants every permission of required.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// User represents a staff member of the agency.
type User struct {
	UserID                 string     `json:"userID"`
	Email                  string     `json:"email"`
	Name                   string     `json:"name"`
	Role                   Role       `json:"role"`
	AuthProvider           string     `json:"authProvider"`
	PasswordHash           string     `json:"-"`
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)
