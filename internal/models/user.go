package models

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID      string   `json:"userId"`
	Role        UserRole `json:"role"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
}

func (p *Principal) IsInstructor() bool {
	return p != nil && p.Role == RoleInstructor
}
