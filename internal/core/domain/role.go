package domain

// Role is a closed set of authorization levels. RoleNone is the explicit
// absence of a role and satisfies no requirement.
type Role string

const (
	RoleNone    Role = ""
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleStaff:   1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// ParseUserRole narrows an untrusted value to a Role. Only the exact strings
// "admin", "manager" and "staff" are accepted; anything else, including other
// casings, numbers and nil, yields RoleNone.
func ParseUserRole(v any) Role {
	s, ok := v.(string)
	if !ok {
		return RoleNone
	}
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	case RoleStaff:
		return RoleStaff
	default:
		return RoleNone
	}
}

// Satisfies reports whether r is at least as privileged as min.
func (r Role) Satisfies(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[min]
	if !ok {
		return false
	}
	return have >= want
}
