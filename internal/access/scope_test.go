package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SiperumID/Siperum-Backend/internal/region"
)

func strPtr(s string) *string { return &s }

// regencyUser is a regency-level user assigned to Kabupaten Bogor (32.01),
// with its province ancestor denormalized alongside.
func regencyUser() *User {
	return &User{
		UserID:             "user-regency",
		UserLevel:          LevelRegency,
		AssignedProvinceID: strPtr("32"),
		AssignedRegencyID:  strPtr("3201"),
	}
}

func villageUser() *User {
	return &User{
		UserID:             "user-village",
		UserLevel:          LevelVillage,
		AssignedProvinceID: strPtr("32"),
		AssignedRegencyID:  strPtr("3201"),
		AssignedDistrictID: strPtr("320101"),
		AssignedVillageID:  strPtr("3201012001"),
	}
}

func TestResolveScope_BypassRoles(t *testing.T) {
	for _, slug := range []string{RoleSuperAdmin, RoleVerifikator} {
		scope := ResolveScope(regencyUser(), []string{slug})
		assert.True(t, scope.Bypass, "role %s must bypass location scoping", slug)
		assert.True(t, scope.Allows(region.Jurisdiction{VillageID: "9999999999"}))
	}
}

func TestResolveScope_AdminKabupatenSubtree(t *testing.T) {
	scope := ResolveScope(regencyUser(), []string{RoleAdminKabupaten})

	assert.True(t, scope.Subtree)
	// Anything tagged with the assigned regency is in the subtree.
	assert.True(t, scope.Allows(region.Jurisdiction{RegencyID: "3201", DistrictID: "320105", VillageID: "3201052003"}))
	// A different regency's subtree is not.
	assert.False(t, scope.Allows(region.Jurisdiction{RegencyID: "3202", VillageID: "3202012001"}))
}

func TestResolveScope_AdminDesaExactVillage(t *testing.T) {
	scope := ResolveScope(villageUser(), []string{RoleAdminDesa})

	assert.True(t, scope.Allows(region.Jurisdiction{RegencyID: "3201", DistrictID: "320101", VillageID: "3201012001"}))
	// Sibling village in the same district is out of scope.
	assert.False(t, scope.Allows(region.Jurisdiction{RegencyID: "3201", DistrictID: "320101", VillageID: "3201012002"}))
}

func TestResolveScope_GenericLevelNoDescendantInheritance(t *testing.T) {
	// A generic regency-level user (no admin role) is pinned to the single
	// assigned node; descendants do not come along automatically.
	scope := ResolveScope(regencyUser(), nil)

	assert.False(t, scope.Subtree)
	assert.True(t, scope.Allows(region.Jurisdiction{RegencyID: "3201"}))
	assert.False(t, scope.Allows(region.Jurisdiction{RegencyID: "3202"}))
	// A record tagged deeper inside the regency is a descendant; without the
	// admin_kabupaten role it stays out of scope.
	assert.False(t, scope.Allows(region.Jurisdiction{RegencyID: "3201", DistrictID: "320101", VillageID: "3201012001"}))
}

func TestResolveScope_CitizenIsOwnerOnly(t *testing.T) {
	citizen := &User{UserID: "warga-1", UserLevel: LevelCitizen}
	scope := ResolveScope(citizen, nil)

	assert.True(t, scope.OwnerOnly)
	assert.Equal(t, "warga-1", scope.OwnerID)
	// Jurisdiction never grants a citizen anything.
	assert.False(t, scope.Allows(region.Jurisdiction{VillageID: "3201012001"}))
}

func TestResolveScope_UnresolvableUserDeniesAll(t *testing.T) {
	// Regency-level user with no assignment at all: empty scope, no panic.
	broken := &User{UserID: "user-broken", UserLevel: LevelRegency}
	scope := ResolveScope(broken, nil)

	assert.True(t, scope.Empty())
	assert.False(t, scope.Allows(region.Jurisdiction{RegencyID: "3201"}))

	assert.False(t, ResolveScope(nil, nil).Allows(region.Jurisdiction{RegencyID: "3201"}))
}

func TestMatchesLocation_ExactMatchAlwaysAllowed(t *testing.T) {
	u := villageUser()
	u.CanInheritData = false

	assert.True(t, MatchesLocation(u, region.LevelVillage, "3201012001"))
	assert.False(t, MatchesLocation(u, region.LevelVillage, "3201012002"))
	// Without inheritance, coarser-tagged data does not match.
	assert.False(t, MatchesLocation(u, region.LevelDistrict, "320101"))
}

func TestMatchesLocation_InheritanceReachesCoarserOnly(t *testing.T) {
	u := villageUser()
	u.CanInheritData = true
	u.InheritanceDepth = InheritAllChildren

	// Data tagged at an ancestor tier matching the user's own chain is allowed.
	assert.True(t, MatchesLocation(u, region.LevelDistrict, "320101"))
	assert.True(t, MatchesLocation(u, region.LevelRegency, "3201"))
	assert.True(t, MatchesLocation(u, region.LevelProvince, "32"))

	// An ancestor tier id from an unrelated chain is not.
	assert.False(t, MatchesLocation(u, region.LevelDistrict, "320199"))
}

func TestMatchesLocation_DirectDepthStopsAtImmediateParent(t *testing.T) {
	u := villageUser()
	u.CanInheritData = true
	u.InheritanceDepth = InheritDirect

	assert.True(t, MatchesLocation(u, region.LevelDistrict, "320101"))
	assert.False(t, MatchesLocation(u, region.LevelRegency, "3201"))
	assert.False(t, MatchesLocation(u, region.LevelProvince, "32"))
}

func TestMatchesLocation_NeverMatchesDescendants(t *testing.T) {
	// The inheritance direction is strictly upward: a province user with
	// inheritance acts on data tagged with their own province, never on
	// arbitrary descendant nodes.
	u := &User{
		UserID:             "user-province",
		UserLevel:          LevelProvince,
		AssignedProvinceID: strPtr("32"),
		CanInheritData:     true,
		InheritanceDepth:   InheritAllChildren,
	}

	assert.True(t, MatchesLocation(u, region.LevelProvince, "32"))
	assert.False(t, MatchesLocation(u, region.LevelRegency, "3201"))
	assert.False(t, MatchesLocation(u, region.LevelVillage, "3201012001"))
}

func TestMatchesLocation_CitizenNeverMatches(t *testing.T) {
	citizen := &User{UserID: "warga-1", UserLevel: LevelCitizen, CanInheritData: true}
	assert.False(t, MatchesLocation(citizen, region.LevelVillage, "3201012001"))
}

func TestScopeFilterNarrowsByLevelColumn(t *testing.T) {
	scope := ResolveScope(villageUser(), []string{RoleAdminDesa})
	assert.Equal(t, "village_id", levelColumns[scope.Level])

	scope = ResolveScope(regencyUser(), []string{RoleAdminKabupaten})
	assert.Equal(t, "regency_id", levelColumns[scope.Level])
}
