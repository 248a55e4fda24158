package permissions

import (
	"reviewhub/internal/apperr"
	"reviewhub/internal/httpapi/models"
)

// Actor is the identity attached to a request, possibly anonymous.
type Actor struct {
	ID            string
	Username      string
	Role          string
	Authenticated bool
}

func Anonymous() Actor {
	return Actor{}
}

func (a Actor) elevated() bool {
	return a.Role == models.RoleModerator || a.Role == models.RoleAdmin
}

func (a Actor) admin() bool {
	return a.Role == models.RoleAdmin
}

// Verb is the kind of operation being attempted.
type Verb int

const (
	VerbList Verb = iota
	VerbRetrieve
	VerbCreate
	VerbUpdate
	VerbDelete
)

// Domain groups resources that share one permission rule set.
type Domain int

const (
	// DomainCatalog covers Category, Genre and Title.
	DomainCatalog Domain = iota
	// DomainContent covers Review and Comment.
	DomainContent
	// DomainUsers is the admin user-administration collection.
	DomainUsers
	// DomainSelf is the /users/me endpoint.
	DomainSelf
)

// requirement is what the table demands of the actor for one (domain, verb).
type requirement int

const (
	anyone requirement = iota
	authenticated
	ownerOrElevated
	adminOnly
)

// table is the single policy consulted by every aggregate, keyed purely on
// the kind of action; ownership enters only through ownerOrElevated.
var table = map[Domain]map[Verb]requirement{
	DomainCatalog: {
		VerbList:     anyone,
		VerbRetrieve: anyone,
		VerbCreate:   adminOnly,
		VerbUpdate:   adminOnly,
		VerbDelete:   adminOnly,
	},
	DomainContent: {
		VerbList:     anyone,
		VerbRetrieve: anyone,
		VerbCreate:   authenticated,
		VerbUpdate:   ownerOrElevated,
		VerbDelete:   ownerOrElevated,
	},
	DomainUsers: {
		VerbList:     adminOnly,
		VerbRetrieve: adminOnly,
		VerbCreate:   adminOnly,
		VerbUpdate:   adminOnly,
		VerbDelete:   adminOnly,
	},
	DomainSelf: {
		VerbRetrieve: authenticated,
		VerbUpdate:   authenticated,
	},
}

// Allow decides whether the actor may perform verb on a resource in the
// given domain. owned reports whether the actor authored the resource; it
// is only consulted for owner-or-elevated rules. A nil return means
// allowed; otherwise the error is Unauthenticated or Forbidden.
func Allow(actor Actor, verb Verb, domain Domain, owned bool) error {
	verbs, ok := table[domain]
	if !ok {
		return apperr.Forbidden("operation not permitted")
	}
	req, ok := verbs[verb]
	if !ok {
		return apperr.Forbidden("operation not permitted")
	}

	switch req {
	case anyone:
		return nil
	case authenticated:
		if !actor.Authenticated {
			return apperr.Unauthenticated("authentication required")
		}
		return nil
	case ownerOrElevated:
		if !actor.Authenticated {
			return apperr.Unauthenticated("authentication required")
		}
		if owned || actor.elevated() {
			return nil
		}
		return apperr.Forbidden("you do not have permission to modify this resource")
	case adminOnly:
		if !actor.Authenticated {
			return apperr.Unauthenticated("authentication required")
		}
		if actor.admin() {
			return nil
		}
		return apperr.Forbidden("administrator access required")
	}
	return apperr.Forbidden("operation not permitted")
}
