package authz

// Role is one of the fixed editorial roles. The set is closed: roles are
// compile-time constants, never loaded from storage.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleAuthor     Role = "author"
	RoleSubscriber Role = "subscriber"
)

// roleRanks assigns each role a privilege rank. Ranks are unique and
// strictly ordered; a missing role maps to 0, below every real role.
var roleRanks = map[Role]int{
	RoleAdmin:      4,
	RoleEditor:     3,
	RoleAuthor:     2,
	RoleSubscriber: 1,
}

// Subject is the acting principal for one request. A nil *Subject means
// an unauthenticated guest. Subjects are resolved per request by the
// auth middleware; this package only consumes them.
type Subject struct {
	ID   string
	Role Role
}

// Rank returns the privilege rank of a role, 0 for unknown roles.
func Rank(role Role) int {
	return roleRanks[role]
}

// IsValidRole reports whether role is a member of the closed role set.
func IsValidRole(role Role) bool {
	_, ok := roleRanks[role]
	return ok
}

// HasRole reports whether the subject holds at least the required role.
// A nil subject never qualifies. An unknown required role never grants
// access: membership is checked before any rank comparison, so a typo'd
// role name cannot accidentally pass against a rank-0 subject.
func HasRole(subject *Subject, required Role) bool {
	if subject == nil {
		return false
	}
	if !IsValidRole(required) {
		return false
	}
	return Rank(subject.Role) >= Rank(required)
}

// RolesSatisfied returns every role the subject qualifies for, highest
// first, including its own. Empty for a nil subject.
func RolesSatisfied(subject *Subject) []Role {
	if subject == nil {
		return nil
	}
	rank := Rank(subject.Role)
	var roles []Role
	for _, r := range AllRoles() {
		if roleRanks[r] <= rank {
			roles = append(roles, r)
		}
	}
	return roles
}

// AllRoles returns the closed role set in descending privilege order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleAuthor, RoleSubscriber}
}
