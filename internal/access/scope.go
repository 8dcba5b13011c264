package access

import (
	"gorm.io/gorm"

	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// Scope is the set of jurisdictions a user may act on, reduced to a form that
// can answer point queries (Allows) and narrow list queries (Filter).
type Scope struct {
	// Bypass skips location scoping entirely (super_admin, verifikator).
	Bypass bool
	// OwnerOnly scopes to records authored by OwnerID (citizens).
	OwnerOnly bool
	OwnerID   string
	// Level+NodeID pin the single permitted node; Subtree additionally admits
	// everything beneath it (admin_kabupaten only).
	Level   region.Level
	NodeID  string
	Subtree bool
}

// Empty reports whether the scope denies everything.
func (s Scope) Empty() bool {
	return !s.Bypass && !s.OwnerOnly && s.NodeID == ""
}

// ResolveScope computes the user's scope from their level, assignment and
// roles. An unresolvable user (no matching jurisdiction) yields the empty
// scope; callers get uniform denials, never an error.
func ResolveScope(u *User, roleSlugs []string) Scope {
	if u == nil {
		return Scope{}
	}
	for _, slug := range roleSlugs {
		if slug == RoleSuperAdmin || slug == RoleVerifikator {
			return Scope{Bypass: true}
		}
	}
	for _, slug := range roleSlugs {
		switch slug {
		case RoleAdminKabupaten:
			if id := u.AssignedIDAt(region.LevelRegency); id != "" {
				return Scope{Level: region.LevelRegency, NodeID: id, Subtree: true}
			}
			return Scope{}
		case RoleAdminDesa:
			if id := u.AssignedIDAt(region.LevelVillage); id != "" {
				return Scope{Level: region.LevelVillage, NodeID: id}
			}
			return Scope{}
		}
	}
	if u.UserLevel == LevelCitizen {
		return Scope{OwnerOnly: true, OwnerID: u.UserID}
	}
	// Generic levels: exactly the assigned node, no descendant inheritance.
	lvl := u.UserLevel.RegionLevel()
	if lvl == "" {
		return Scope{}
	}
	if id := u.AssignedIDAt(lvl); id != "" {
		return Scope{Level: lvl, NodeID: id}
	}
	return Scope{}
}

// Allows reports whether the target jurisdiction is inside the scope. Owner
// scoping never grants by jurisdiction; pair with OwnerID checks on the record.
func (s Scope) Allows(j region.Jurisdiction) bool {
	switch {
	case s.Bypass:
		return true
	case s.OwnerOnly, s.Empty():
		return false
	case s.Subtree:
		// Records always carry their full ancestor chain, so subtree
		// membership reduces to equality at the regency tier.
		return j.IDAt(s.Level) == s.NodeID
	default:
		// Exactly the assigned node: a record tagged at a finer tier is a
		// descendant, and only the subtree roles reach those.
		return j.Level() == s.Level && j.IDAt(s.Level) == s.NodeID
	}
}

var levelColumns = map[region.Level]string{
	region.LevelProvince: "province_id",
	region.LevelRegency:  "regency_id",
	region.LevelDistrict: "district_id",
	region.LevelVillage:  "village_id",
}

// Filter narrows a query to the scope. The empty scope matches nothing.
func (s Scope) Filter(q *gorm.DB) *gorm.DB {
	switch {
	case s.Bypass:
		return q
	case s.OwnerOnly:
		return q.Where("created_by = ?", s.OwnerID)
	case s.Empty():
		return q.Where("1 = 0")
	default:
		return q.Where(levelColumns[s.Level]+" = ?", s.NodeID)
	}
}

// MatchesLocation is the direct location-equality check used by SQL-level
// permission predicates. An exact match at the user's own tier always passes.
// With can_inherit_data, a target tagged only at a coarser tier also passes
// when its id equals the user's stored assignment at that tier; inheritance
// reaches upward to coarser-tagged data, never downward to descendants.
// inheritance_depth "direct" stops at the immediately coarser tier;
// "all_children" admits any ancestor tier.
func MatchesLocation(u *User, targetLevel region.Level, targetID string) bool {
	if u == nil || targetID == "" || targetLevel == "" {
		return false
	}
	own := u.UserLevel.RegionLevel()
	if own == "" {
		return false // citizens are never location-matched
	}
	if targetLevel == own {
		return targetID == u.AssignedIDAt(own)
	}
	if !u.CanInheritData {
		return false
	}
	// Walk coarser tiers from the user's own level; stop after one step for
	// "direct" depth.
	steps := 0
	for lvl := own.Coarser(); lvl != ""; lvl = lvl.Coarser() {
		steps++
		if u.InheritanceDepth == InheritDirect && steps > 1 {
			return false
		}
		if lvl == targetLevel {
			return targetID == u.AssignedIDAt(lvl)
		}
	}
	return false
}
