package access

import (
	"context"

	"gorm.io/gorm"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
)

// DBGrantSource is the gorm-backed GrantSource over the roles, permissions,
// user_roles and role_permissions tables.
type DBGrantSource struct {
	db *gorm.DB
}

func NewDBGrantSource(db *gorm.DB) *DBGrantSource {
	return &DBGrantSource{db: db}
}

func (s *DBGrantSource) RoleSlugs(ctx context.Context, userID string) ([]string, error) {
	var slugs []string
	err := s.db.WithContext(ctx).
		Table("user_roles ur").
		Select("r.slug").
		Joins("JOIN roles r ON r.id = ur.role_id AND r.is_active").
		Where("ur.user_id = ? AND ur.is_active AND (ur.expires_at IS NULL OR ur.expires_at > NOW())", userID).
		Scan(&slugs).Error
	if err != nil {
		return nil, apperrors.Database("load role slugs", err)
	}
	return slugs, nil
}

func (s *DBGrantSource) HasGrant(ctx context.Context, userID, permissionName string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("user_roles ur").
		Joins("JOIN roles r ON r.id = ur.role_id AND r.is_active").
		Joins("JOIN role_permissions rp ON rp.role_id = r.id AND rp.is_active").
		Joins("JOIN permissions p ON p.id = rp.permission_id AND p.is_active").
		Where("ur.user_id = ? AND ur.is_active AND (ur.expires_at IS NULL OR ur.expires_at > NOW())", userID).
		Where("p.name = ?", permissionName).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Database("check permission grant", err)
	}
	return count > 0, nil
}
