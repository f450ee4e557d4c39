package service

import "simkas/internal/model"

// CanValidate reports whether actor may approve or reject submissions of c.
func CanValidate(actor model.Actor, c *model.Campaign) bool {
	if c == nil {
		return false
	}
	if c.OwnerID == actor.ID {
		return true
	}
	switch actor.Role {
	case model.RoleCohortAdmin:
		return c.Scope == model.ScopeCohort && sameUnit(actor.CohortID, c.CohortID)
	case model.RoleTreasurer:
		return c.Scope == model.ScopeClass && sameUnit(actor.ClassID, c.ClassID)
	}
	return false
}

// CanSubmit returns nil when actor may pay into c. Inactive campaigns are
// refused before anything else.
func CanSubmit(actor model.Actor, c *model.Campaign) error {
	if !c.Active {
		return ErrCampaignInactive
	}
	if CanValidate(actor, c) {
		return ErrForbidden
	}
	return nil
}

func sameUnit(a, b *uint64) bool {
	return a != nil && b != nil && *a == *b
}
