// Package roles resolves the admin roles a wallet address holds,
// including the implied roles used by the admin tooling.
package roles

import "sort"

// Role is a named permission granted to a wallet address.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleMinter     Role = "minter"
	RoleBurner     Role = "burner"
	RolePauser     Role = "pauser"
)

// implied maps a granted role to the roles it carries.
var implied = map[Role][]Role{
	RoleSuperAdmin: {RoleAdmin},
	RoleAdmin:      {RoleMinter, RoleBurner, RolePauser},
}

// Expand returns the full role set for the granted roles, derivation
// included: super_admin implies admin, admin implies minter, burner, and
// pauser. The result is sorted and deduplicated.
func Expand(granted []Role) []Role {
	seen := make(map[Role]bool, len(granted))

	var walk func(r Role)
	walk = func(r Role) {
		if seen[r] {
			return
		}
		seen[r] = true
		for _, child := range implied[r] {
			walk(child)
		}
	}
	for _, r := range granted {
		walk(r)
	}

	out := make([]Role, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
