package authz

import "errors"

// ErrUnauthorized is returned by Authorize when the policy denies the
// requested action. Callers decide the user-visible response.
var ErrUnauthorized = errors.New("unauthorized")

// Action is a verb applied to a resource. The core set is CRUD; custom
// actions (publish, pin, ...) are evaluated as update unless the rule
// table names them specifically.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind identifies what sort of resource a decision is about.
type Kind string

const (
	KindPost     Kind = "post"
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
	KindMedia    Kind = "media"
	KindComment  Kind = "comment"
	KindUser     Kind = "user"
)

// Instance carries the fields of a loaded resource that policy rules
// inspect. OwnerID is the owning user for ownership-gated rules. Role is
// set only for user resources and holds the target account's role.
type Instance struct {
	ID      string
	OwnerID string
	Role    Role
}

// Resource is the descriptor passed to a decision: a kind plus an
// optional loaded instance. Instance is nil for create checks.
type Resource struct {
	Kind     Kind
	Instance *Instance
}

// coreActions is the closed action set the rule table is defined over.
var coreActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// contentKinds are the kinds editors manage without ownership checks.
var contentKinds = map[Kind]bool{
	KindPost:     true,
	KindCategory: true,
	KindTag:      true,
	KindMedia:    true,
	KindComment:  true,
}

// normalize folds domain-specific actions into their update-equivalent.
// Only the four core actions have rules of their own.
func normalize(action Action) Action {
	switch action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return action
	default:
		return ActionUpdate
	}
}

// owns reports whether the subject owns the resource instance. A missing
// instance is never owned, so ownership-gated rules deny create-style
// checks that carry no instance.
func owns(subject *Subject, res Resource) bool {
	if res.Instance == nil {
		return false
	}
	return res.Instance.OwnerID == subject.ID
}

// Can decides whether subject may perform action on res. It is a pure
// function: no I/O, no mutable state, safe for unsynchronized concurrent
// use. Rules are evaluated top to bottom, first match wins, and the
// fallthrough is deny. Unknown roles and unknown kinds fall through to
// deny rather than erroring.
func Can(subject *Subject, action Action, res Resource) bool {
	if subject == nil {
		return false
	}
	action = normalize(action)

	switch subject.Role {
	case RoleAdmin:
		return true

	case RoleEditor:
		if contentKinds[res.Kind] {
			return true
		}
		// Editors manage author and subscriber accounts only; admin and
		// fellow editor accounts are off limits, as is a bare user kind
		// with no loaded target.
		if res.Kind == KindUser && res.Instance != nil {
			return res.Instance.Role == RoleAuthor || res.Instance.Role == RoleSubscriber
		}
		return false

	case RoleAuthor:
		switch action {
		case ActionRead:
			return true
		case ActionCreate:
			return res.Kind == KindPost || res.Kind == KindMedia
		case ActionUpdate, ActionDelete:
			if res.Kind != KindPost && res.Kind != KindMedia {
				return false
			}
			return owns(subject, res)
		}
		return false

	case RoleSubscriber:
		switch action {
		case ActionRead:
			return true
		case ActionCreate:
			return res.Kind == KindComment
		case ActionUpdate, ActionDelete:
			return res.Kind == KindComment && owns(subject, res)
		}
		return false
	}

	return false
}

// Authorize is Can wrapped into a typed failure for call sites that
// propagate errors instead of branching on a bool.
func Authorize(subject *Subject, action Action, res Resource) error {
	if !Can(subject, action, res) {
		return ErrUnauthorized
	}
	return nil
}

// AvailableActions returns the core actions the subject may perform on
// the given kind and instance. It re-derives from Can so it can never
// drift from the rule table.
func AvailableActions(subject *Subject, kind Kind, instance *Instance) []Action {
	var allowed []Action
	for _, a := range coreActions {
		if Can(subject, a, Resource{Kind: kind, Instance: instance}) {
			allowed = append(allowed, a)
		}
	}
	return allowed
}
