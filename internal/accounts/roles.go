// Package accounts resolves semantic account roles to ledger accounts.
package accounts

import "fmt"

// Role is a semantic key into a tenant's chart-of-accounts mapping.
type Role string

const (
	RoleRevenue   Role = "revenue"
	RoleCOGS      Role = "cogs"
	RoleInventory Role = "inventory"
	RoleAR        Role = "ar"
)

// Unresolved is the sentinel account id for a missing mapping.
const Unresolved int64 = 0

// RequiredForSale lists the roles a sales posting cannot proceed without.
func RequiredForSale() []Role {
	return []Role{RoleAR, RoleRevenue, RoleCOGS, RoleInventory}
}

// Set holds resolved account ids for one tenant.
type Set struct {
	Revenue   int64
	COGS      int64
	Inventory int64
	AR        int64
}

// Get returns the account id for a role.
func (s Set) Get(role Role) int64 {
	switch role {
	case RoleRevenue:
		return s.Revenue
	case RoleCOGS:
		return s.COGS
	case RoleInventory:
		return s.Inventory
	case RoleAR:
		return s.AR
	}
	return Unresolved
}

// Missing reports which of the given roles are unresolved.
func (s Set) Missing(roles []Role) []Role {
	var missing []Role
	for _, role := range roles {
		if s.Get(role) == Unresolved {
			missing = append(missing, role)
		}
	}
	return missing
}

// Assign stores an account id under a role.
func (s *Set) Assign(role Role, accountID int64) error {
	switch role {
	case RoleRevenue:
		s.Revenue = accountID
	case RoleCOGS:
		s.COGS = accountID
	case RoleInventory:
		s.Inventory = accountID
	case RoleAR:
		s.AR = accountID
	default:
		return fmt.Errorf("accounts: unknown role %q", role)
	}
	return nil
}
