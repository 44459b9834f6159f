package user

// Role is the coarse capability carried by every account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Satisfies reports whether the principal holds at least the required role.
func (p *Principal) Satisfies(required Role) bool {
	if p == nil {
		return false
	}
	if required == RoleAdmin {
		return p.Role == RoleAdmin
	}
	return p.Role.Valid()
}
