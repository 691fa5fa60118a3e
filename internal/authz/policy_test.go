package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allKinds = []Kind{KindPost, KindCategory, KindTag, KindMedia, KindComment, KindUser}

func TestCanNilSubjectAlwaysDenied(t *testing.T) {
	for _, kind := range allKinds {
		for _, action := range coreActions {
			assert.Falsef(t, Can(nil, action, Resource{Kind: kind}), "%s %s", action, kind)
			assert.Falsef(t, Can(nil, action, Resource{Kind: kind, Instance: &Instance{ID: "x"}}), "%s %s with instance", action, kind)
		}
	}
}

func TestCanAdminUniversal(t *testing.T) {
	admin := &Subject{ID: "a1", Role: RoleAdmin}
	for _, kind := range allKinds {
		for _, action := range coreActions {
			assert.Truef(t, Can(admin, action, Resource{Kind: kind}), "%s %s", action, kind)
		}
	}
	// Custom actions too, via the update-equivalent fold.
	assert.True(t, Can(admin, Action("publish"), Resource{Kind: KindPost}))
}

func TestCanEditorContentKinds(t *testing.T) {
	editor := &Subject{ID: "e1", Role: RoleEditor}
	for _, kind := range []Kind{KindPost, KindCategory, KindTag, KindMedia, KindComment} {
		for _, action := range coreActions {
			// Ownership is irrelevant for editors on content.
			other := Resource{Kind: kind, Instance: &Instance{ID: "x", OwnerID: "someone-else"}}
			assert.Truef(t, Can(editor, action, other), "%s %s", action, kind)
		}
	}
}

func TestCanEditorOnUserAccounts(t *testing.T) {
	editor := &Subject{ID: "e1", Role: RoleEditor}

	adminAccount := Resource{Kind: KindUser, Instance: &Instance{ID: "u1", Role: RoleAdmin}}
	editorAccount := Resource{Kind: KindUser, Instance: &Instance{ID: "u2", Role: RoleEditor}}
	authorAccount := Resource{Kind: KindUser, Instance: &Instance{ID: "u3", Role: RoleAuthor}}
	subscriberAccount := Resource{Kind: KindUser, Instance: &Instance{ID: "u4", Role: RoleSubscriber}}

	assert.False(t, Can(editor, ActionUpdate, adminAccount))
	assert.False(t, Can(editor, ActionDelete, editorAccount))
	assert.True(t, Can(editor, ActionUpdate, authorAccount))
	assert.True(t, Can(editor, ActionDelete, subscriberAccount))
	assert.True(t, Can(editor, ActionRead, authorAccount))

	// No loaded target means no role to restrict on: deny.
	assert.False(t, Can(editor, ActionCreate, Resource{Kind: KindUser}))
}

func TestCanAuthorOwnershipGating(t *testing.T) {
	author := &Subject{ID: "au1", Role: RoleAuthor}

	own := Resource{Kind: KindPost, Instance: &Instance{ID: "p1", OwnerID: "au1"}}
	others := Resource{Kind: KindPost, Instance: &Instance{ID: "p2", OwnerID: "au2"}}
	none := Resource{Kind: KindPost}

	assert.True(t, Can(author, ActionUpdate, own))
	assert.True(t, Can(author, ActionDelete, own))
	assert.False(t, Can(author, ActionUpdate, others))
	assert.False(t, Can(author, ActionDelete, others))
	assert.False(t, Can(author, ActionUpdate, none))

	assert.True(t, Can(author, ActionCreate, Resource{Kind: KindPost}))
	assert.True(t, Can(author, ActionCreate, Resource{Kind: KindMedia}))
	assert.True(t, Can(author, ActionRead, Resource{Kind: KindCategory}))

	// Authors manage only their posts and media.
	assert.False(t, Can(author, ActionCreate, Resource{Kind: KindCategory}))
	assert.False(t, Can(author, ActionCreate, Resource{Kind: KindTag}))
	assert.False(t, Can(author, ActionCreate, Resource{Kind: KindComment}))
	assert.False(t, Can(author, ActionUpdate, Resource{Kind: KindUser, Instance: &Instance{ID: "au1", OwnerID: "au1"}}))
}

func TestCanSubscriberOnComments(t *testing.T) {
	subscriber := &Subject{ID: "s1", Role: RoleSubscriber}

	assert.True(t, Can(subscriber, ActionCreate, Resource{Kind: KindComment}))
	assert.True(t, Can(subscriber, ActionRead, Resource{Kind: KindPost}))

	own := Resource{Kind: KindComment, Instance: &Instance{ID: "c1", OwnerID: "s1"}}
	others := Resource{Kind: KindComment, Instance: &Instance{ID: "c2", OwnerID: "s2"}}
	assert.True(t, Can(subscriber, ActionDelete, own))
	assert.True(t, Can(subscriber, ActionUpdate, own))
	assert.False(t, Can(subscriber, ActionDelete, others))

	assert.False(t, Can(subscriber, ActionCreate, Resource{Kind: KindPost}))
	assert.False(t, Can(subscriber, ActionUpdate, Resource{Kind: KindPost, Instance: &Instance{ID: "p1", OwnerID: "s1"}}))
}

func TestCanUnknownRoleAndKindDeny(t *testing.T) {
	stranger := &Subject{ID: "x1", Role: Role("superuser")}
	for _, action := range coreActions {
		assert.False(t, Can(stranger, action, Resource{Kind: KindPost}))
	}

	author := &Subject{ID: "au1", Role: RoleAuthor}
	assert.False(t, Can(author, ActionCreate, Resource{Kind: Kind("widget")}))
	// Read stays open for authors regardless of kind; everything else denies.
	assert.False(t, Can(author, ActionUpdate, Resource{Kind: Kind("widget"), Instance: &Instance{ID: "w", OwnerID: "au1"}}))
}

func TestCustomActionsFoldToUpdate(t *testing.T) {
	author := &Subject{ID: "au1", Role: RoleAuthor}
	own := Resource{Kind: KindPost, Instance: &Instance{ID: "p1", OwnerID: "au1"}}
	others := Resource{Kind: KindPost, Instance: &Instance{ID: "p2", OwnerID: "au2"}}

	assert.Equal(t, Can(author, ActionUpdate, own), Can(author, Action("publish"), own))
	assert.Equal(t, Can(author, ActionUpdate, others), Can(author, Action("publish"), others))
}

// AvailableActions must be exactly the set of actions Can allows, for
// every subject/kind/instance combination. The two share one rule table;
// this pins that they can never drift apart.
func TestAvailableActionsMatchesCan(t *testing.T) {
	subjects := []*Subject{
		nil,
		{ID: "a1", Role: RoleAdmin},
		{ID: "e1", Role: RoleEditor},
		{ID: "au1", Role: RoleAuthor},
		{ID: "s1", Role: RoleSubscriber},
		{ID: "x1", Role: Role("unknown")},
	}
	instances := []*Instance{
		nil,
		{ID: "r1", OwnerID: "au1"},
		{ID: "r2", OwnerID: "someone-else"},
		{ID: "r3", OwnerID: "s1", Role: RoleAuthor},
		{ID: "r4", OwnerID: "e1", Role: RoleAdmin},
	}

	for _, subject := range subjects {
		for _, kind := range allKinds {
			for _, instance := range instances {
				got := AvailableActions(subject, kind, instance)

				var want []Action
				for _, a := range coreActions {
					if Can(subject, a, Resource{Kind: kind, Instance: instance}) {
						want = append(want, a)
					}
				}
				assert.Equalf(t, want, got, "subject=%+v kind=%s instance=%+v", subject, kind, instance)
			}
		}
	}
}
