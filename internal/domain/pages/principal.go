package pages

import (
	"slices"

	"github.com/google/uuid"
)

// Principal is whoever is acting on the tree. It is built at the request
// boundary and never stored.
type Principal struct {
	UserID        uuid.UUID `json:"user_id"`
	Authenticated bool      `json:"authenticated"`
	Staff         bool      `json:"staff"`
	Superuser     bool      `json:"superuser"`
	Permissions   []string  `json:"permissions,omitempty"`
}

func Anonymous() Principal { return Principal{} }

func (p Principal) HasPerm(perm string) bool {
	if p.Superuser {
		return true
	}
	return slices.Contains(p.Permissions, perm)
}
