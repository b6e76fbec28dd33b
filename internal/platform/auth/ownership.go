package auth

import (
	"github.com/google/uuid"

	"github.com/clinic/records/internal/platform/apperr"
)

// Kind names the resource types the gate knows about.
type Kind string

const (
	KindPatient     Kind = "patient"
	KindDoctor      Kind = "doctor"
	KindMapping     Kind = "mapping"
	KindAppointment Kind = "appointment"
)

// Action describes the kind of operation a caller wants to perform.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Safe reports whether the action is read-only.
func (a Action) Safe() bool {
	return a == ActionList || a == ActionView
}

// Ownership is either Owned or Unowned. The unexported method seals the set.
type Ownership interface {
	ownership()
}

// Owned marks a resource that only its owner may mutate.
type Owned struct {
	Owner uuid.UUID
}

// Unowned marks a resource any authenticated caller may mutate.
type Unowned struct{}

func (Owned) ownership()   {}
func (Unowned) ownership() {}

// Resource is the gate's view of a record.
type Resource struct {
	Kind      Kind
	Ownership Ownership
}

// OwnedResource is shorthand for Resource{kind, Owned{owner}}.
func OwnedResource(kind Kind, owner uuid.UUID) Resource {
	return Resource{Kind: kind, Ownership: Owned{Owner: owner}}
}

// UnownedResource is shorthand for Resource{kind, Unowned{}}.
func UnownedResource(kind Kind) Resource {
	return Resource{Kind: kind, Ownership: Unowned{}}
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Evaluate decides whether caller may perform action on res. It has no side
// effects.
func Evaluate(caller Identity, res Resource, action Action) Decision {
	if caller.IsZero() {
		return Decision{Allowed: false, Reason: "unauthenticated"}
	}
	if action.Safe() {
		return Decision{Allowed: true, Reason: "safe action"}
	}

	switch o := res.Ownership.(type) {
	case Owned:
		if o.Owner == caller.AccountID {
			return Decision{Allowed: true, Reason: "owner"}
		}
		return Decision{Allowed: false, Reason: "not the owner of this " + string(res.Kind)}
	case Unowned:
		return Decision{Allowed: true, Reason: string(res.Kind) + " has no owner"}
	default:
		// Unknown or missing tag: fail closed.
		return Decision{Allowed: false, Reason: "no ownership information for " + string(res.Kind)}
	}
}

// Authorize is Evaluate expressed as an error: nil when allowed,
// apperr.ErrUnauthorized for a missing identity, apperr.ErrForbidden otherwise.
func Authorize(caller Identity, res Resource, action Action) error {
	if caller.IsZero() {
		return apperr.ErrUnauthorized
	}
	if d := Evaluate(caller, res, action); !d.Allowed {
		return apperr.Newf(apperr.ErrForbidden, "you do not have permission to perform this action")
	}
	return nil
}
