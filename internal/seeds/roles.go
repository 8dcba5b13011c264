package seeds

import (
	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/db"
)

// SeedRoles upserts the built-in roles. The first two bypass location scoping
// entirely; admin_kabupaten gets its regency subtree, admin_desa exactly its
// village.
func SeedRoles() error {
	roles := []access.Role{
		{Slug: access.RoleSuperAdmin, Name: "Super Admin", IsActive: true},
		{Slug: access.RoleVerifikator, Name: "Verifikator", IsActive: true},
		{Slug: access.RoleAdminKabupaten, Name: "Admin Kabupaten", IsActive: true},
		{Slug: access.RoleAdminDesa, Name: "Admin Desa", IsActive: true},
	}
	for _, role := range roles {
		var existing access.Role
		err := db.DB.Where("slug = ?", role.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if err := db.DB.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedPermissions upserts the permission catalog consumed by the route gates.
func SeedPermissions() error {
	perms := []access.Permission{
		{Name: "review.transition", Resource: "review", Action: "update", Scope: access.ScopeLocation, IsCritical: true, IsActive: true},
		{Name: "export.spatial", Resource: "export", Action: "read", Scope: access.ScopeLocation, IsActive: true},
		{Name: "submission.read", Resource: "submission", Action: "read", Scope: access.ScopeLocation, IsActive: true},
		{Name: "submission.write", Resource: "submission", Action: "update", Scope: access.ScopeOwn, IsActive: true},
	}
	for _, perm := range perms {
		var existing access.Permission
		err := db.DB.Where("name = ?", perm.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err := db.DB.Create(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}
