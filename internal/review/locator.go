package review

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// Locator resolves reviewable resources to their jurisdiction and author for
// the access evaluator.
type Locator struct {
	db *gorm.DB
}

func NewLocator(d *gorm.DB) *Locator {
	return &Locator{db: d}
}

func (l *Locator) Locate(ctx context.Context, resourceType, resourceID string) (region.Jurisdiction, string, error) {
	table, ok := entityTables[EntityType(resourceType)]
	if !ok {
		return region.Jurisdiction{}, "", apperrors.Validation(fmt.Sprintf("unknown resource type %q", resourceType))
	}
	var row struct {
		ProvinceID string
		RegencyID  string
		DistrictID string
		VillageID  string
		CreatedBy  string
	}
	err := l.db.WithContext(ctx).Table(table).
		Select("province_id, regency_id, district_id, village_id, created_by").
		Where("id = ?", resourceID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return region.Jurisdiction{}, "", apperrors.NotFound(fmt.Sprintf("%s %s not found", resourceType, resourceID))
	}
	if err != nil {
		return region.Jurisdiction{}, "", apperrors.Database("locate resource", err)
	}
	return region.Jurisdiction{
		ProvinceID: row.ProvinceID,
		RegencyID:  row.RegencyID,
		DistrictID: row.DistrictID,
		VillageID:  row.VillageID,
	}, row.CreatedBy, nil
}
