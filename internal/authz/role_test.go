package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankOrdering(t *testing.T) {
	assert.Greater(t, Rank(RoleAdmin), Rank(RoleEditor))
	assert.Greater(t, Rank(RoleEditor), Rank(RoleAuthor))
	assert.Greater(t, Rank(RoleAuthor), Rank(RoleSubscriber))
	assert.Greater(t, Rank(RoleSubscriber), 0)
}

func TestRankUnknownRoleIsZero(t *testing.T) {
	assert.Equal(t, 0, Rank(Role("superadmin")))
	assert.Equal(t, 0, Rank(Role("")))
}

func TestHasRoleMonotonicity(t *testing.T) {
	for _, r1 := range AllRoles() {
		for _, r2 := range AllRoles() {
			subject := &Subject{ID: "u1", Role: r1}
			want := Rank(r1) >= Rank(r2)
			assert.Equalf(t, want, HasRole(subject, r2), "HasRole(%s, %s)", r1, r2)
		}
	}
}

func TestHasRoleNilSubject(t *testing.T) {
	for _, r := range AllRoles() {
		assert.False(t, HasRole(nil, r))
	}
}

// An unknown required role must deny through set membership, never
// through a rank comparison that a high-privilege subject could pass.
func TestHasRoleUnknownRequiredRole(t *testing.T) {
	admin := &Subject{ID: "u1", Role: RoleAdmin}
	assert.False(t, HasRole(admin, Role("superadmin_nonexistent_role")))
	assert.False(t, HasRole(admin, Role("")))
}

// An unknown subject role denies through rank 0 against any real role.
func TestHasRoleUnknownSubjectRole(t *testing.T) {
	stranger := &Subject{ID: "u1", Role: Role("mystery")}
	for _, r := range AllRoles() {
		assert.False(t, HasRole(stranger, r))
	}
}

func TestRolesSatisfied(t *testing.T) {
	assert.Nil(t, RolesSatisfied(nil))

	editor := &Subject{ID: "u1", Role: RoleEditor}
	assert.Equal(t, []Role{RoleEditor, RoleAuthor, RoleSubscriber}, RolesSatisfied(editor))

	admin := &Subject{ID: "u2", Role: RoleAdmin}
	assert.Equal(t, AllRoles(), RolesSatisfied(admin))

	subscriber := &Subject{ID: "u3", Role: RoleSubscriber}
	assert.Equal(t, []Role{RoleSubscriber}, RolesSatisfied(subscriber))
}

func TestAllRolesDescending(t *testing.T) {
	roles := AllRoles()
	assert.Len(t, roles, 4)
	for i := 1; i < len(roles); i++ {
		assert.Greater(t, Rank(roles[i-1]), Rank(roles[i]))
	}
}
