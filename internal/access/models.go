package access

import (
	"time"

	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// UserLevel mirrors the administrative tier a user is assigned to. Citizens
// have no jurisdiction at all and are scoped to records they authored.
type UserLevel string

const (
	LevelProvince UserLevel = "province"
	LevelRegency  UserLevel = "regency"
	LevelDistrict UserLevel = "district"
	LevelVillage  UserLevel = "village"
	LevelCitizen  UserLevel = "citizen"
)

// Inheritance depth for the legacy data-inheritance flag.
const (
	InheritDirect      = "direct"
	InheritAllChildren = "all_children"
)

// Role slugs with hard-coded scope behavior.
const (
	RoleSuperAdmin     = "super_admin"
	RoleVerifikator    = "verifikator"
	RoleAdminKabupaten = "admin_kabupaten"
	RoleAdminDesa      = "admin_desa"
)

type User struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Username       string    `gorm:"uniqueIndex" json:"username"`
	Password       string    `json:"password,omitempty" gorm:"-"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	UserLevel      UserLevel `gorm:"size:16;default:'citizen'" json:"user_level"`

	// Exactly the field matching UserLevel is expected non-null for
	// non-citizen users; coarser ancestors are denormalized alongside it so
	// the legacy inheritance check never needs a join.
	AssignedProvinceID *string `gorm:"size:8;index" json:"assigned_province_id,omitempty"`
	AssignedRegencyID  *string `gorm:"size:8;index" json:"assigned_regency_id,omitempty"`
	AssignedDistrictID *string `gorm:"size:10;index" json:"assigned_district_id,omitempty"`
	AssignedVillageID  *string `gorm:"size:12;index" json:"assigned_village_id,omitempty"`

	CanInheritData   bool   `gorm:"default:false" json:"can_inherit_data"`
	InheritanceDepth string `gorm:"size:16;default:'direct'" json:"inheritance_depth"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Role struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Slug     string `gorm:"size:64;uniqueIndex" json:"slug"`
	Name     string `gorm:"size:128" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// PermissionScope narrows what a granted permission reaches.
type PermissionScope string

const (
	ScopeOwn       PermissionScope = "own"
	ScopeLocation  PermissionScope = "location"
	ScopeInherited PermissionScope = "inherited"
	ScopeAll       PermissionScope = "all"
)

type Permission struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:128;uniqueIndex" json:"name"`
	Resource   string          `gorm:"size:64;index" json:"resource"`
	Action     string          `gorm:"size:32" json:"action"`
	Scope      PermissionScope `gorm:"size:16;default:'own'" json:"scope"`
	IsCritical bool            `gorm:"default:false" json:"is_critical"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
}

// UserRole links a user to a role; the grant is void once deactivated or past
// its expiry.
type UserRole struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"index;not null" json:"user_id"`
	RoleID    uint       `gorm:"index;not null" json:"role_id"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Role Role `gorm:"foreignKey:RoleID" json:"-"`
}

type RolePermission struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RoleID       uint `gorm:"index;not null" json:"role_id"`
	PermissionID uint `gorm:"index;not null" json:"permission_id"`
	IsActive     bool `gorm:"default:true" json:"is_active"`
}

func (User) TableName() string           { return "users" }
func (Role) TableName() string           { return "roles" }
func (Permission) TableName() string     { return "permissions" }
func (UserRole) TableName() string       { return "user_roles" }
func (RolePermission) TableName() string { return "role_permissions" }

// RegionLevel converts the user level to the region tier; citizen maps to "".
func (l UserLevel) RegionLevel() region.Level {
	switch l {
	case LevelProvince:
		return region.LevelProvince
	case LevelRegency:
		return region.LevelRegency
	case LevelDistrict:
		return region.LevelDistrict
	case LevelVillage:
		return region.LevelVillage
	}
	return ""
}

// AssignedIDAt returns the user's stored assignment at the given tier, or ""
// when unset.
func (u *User) AssignedIDAt(l region.Level) string {
	var p *string
	switch l {
	case region.LevelProvince:
		p = u.AssignedProvinceID
	case region.LevelRegency:
		p = u.AssignedRegencyID
	case region.LevelDistrict:
		p = u.AssignedDistrictID
	case region.LevelVillage:
		p = u.AssignedVillageID
	}
	if p == nil {
		return ""
	}
	return *p
}

// Assigned returns the user's own jurisdiction as stored.
func (u *User) Assigned() region.Jurisdiction {
	j := region.Jurisdiction{}
	if u.AssignedProvinceID != nil {
		j.ProvinceID = *u.AssignedProvinceID
	}
	if u.AssignedRegencyID != nil {
		j.RegencyID = *u.AssignedRegencyID
	}
	if u.AssignedDistrictID != nil {
		j.DistrictID = *u.AssignedDistrictID
	}
	if u.AssignedVillageID != nil {
		j.VillageID = *u.AssignedVillageID
	}
	return j
}
