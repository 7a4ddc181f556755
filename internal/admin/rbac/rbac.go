package rbac

import (
	"sort"
	"strings"
)

// Role represents a staff access tier.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOps       Role = "ops"
	RoleSupport   Role = "support"
	RoleMarketing Role = "marketing"
)

// Capability names one guarded admin operation.
type Capability string

const (
	CapPagesList      Capability = "pages.list"
	CapPagesTranslate Capability = "pages.translate"
	CapBookingsNotify Capability = "bookings.notify"
)

// capabilityRoles maps each capability to the roles permitted to use it.
// Admins hold every capability implicitly.
var capabilityRoles = map[Capability]Roles{
	CapPagesList:      {RoleAdmin},
	CapPagesTranslate: {RoleAdmin},
	CapBookingsNotify: {RoleAdmin, RoleOps, RoleSupport},
}

// Roles is a set of roles.
type Roles []Role

// Has returns true if the provided role exists in the set.
func (rs Roles) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// Intersects returns true if any role in candidate is also present in the set.
func (rs Roles) Intersects(candidate Roles) bool {
	for _, role := range candidate {
		if rs.Has(role) {
			return true
		}
	}
	return false
}

// NormaliseRoles lower-cases, trims and de-duplicates raw role strings.
func NormaliseRoles(raw []string) Roles {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[Role]struct{}, len(raw))
	roles := make(Roles, 0, len(raw))
	for _, val := range raw {
		role := Role(strings.ToLower(strings.TrimSpace(val)))
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}

// RolesForCapability returns the roles configured for the capability.
func RolesForCapability(capability Capability) Roles {
	return capabilityRoles[capability]
}

// HasCapability reports whether the provided roles grant the capability.
// Unknown capabilities are denied to everyone, admins included.
func HasCapability(userRoles []string, capability Capability) bool {
	allowed := RolesForCapability(capability)
	if len(allowed) == 0 {
		return false
	}
	roles := NormaliseRoles(userRoles)
	if roles.Has(RoleAdmin) {
		return true
	}
	return allowed.Intersects(roles)
}

// CapabilitiesForRoles lists, sorted, the capabilities the roles hold.
func CapabilitiesForRoles(userRoles []string) []Capability {
	var caps []Capability
	for capability := range capabilityRoles {
		if HasCapability(userRoles, capability) {
			caps = append(caps, capability)
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
