package region

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
)

// Store reads the administrative hierarchy. The tables are reference data,
// refreshed out of band, so the store is safe for unlimited concurrent readers.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ProvinceByID(ctx context.Context, id string) (*Province, error) {
	var p Province
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapLookup("province", id, err)
	}
	return &p, nil
}

func (s *Store) RegencyByID(ctx context.Context, id string) (*Regency, error) {
	var r Regency
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, wrapLookup("regency", id, err)
	}
	return &r, nil
}

func (s *Store) DistrictByID(ctx context.Context, id string) (*District, error) {
	var d District
	if err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, wrapLookup("district", id, err)
	}
	return &d, nil
}

func (s *Store) VillageByID(ctx context.Context, id string) (*Village, error) {
	var v Village
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, wrapLookup("village", id, err)
	}
	return &v, nil
}

// Ancestors completes a jurisdiction upward from its finest set id, so that a
// record tagged only with a village id still yields district, regency and
// province ids.
func (s *Store) Ancestors(ctx context.Context, j Jurisdiction) (Jurisdiction, error) {
	switch j.Level() {
	case LevelVillage:
		v, err := s.VillageByID(ctx, j.VillageID)
		if err != nil {
			return j, err
		}
		j.DistrictID = v.DistrictID
		fallthrough
	case LevelDistrict:
		d, err := s.DistrictByID(ctx, j.DistrictID)
		if err != nil {
			return j, err
		}
		j.RegencyID = d.RegencyID
		fallthrough
	case LevelRegency:
		r, err := s.RegencyByID(ctx, j.RegencyID)
		if err != nil {
			return j, err
		}
		j.ProvinceID = r.ProvinceID
		return j, nil
	case LevelProvince:
		return j, nil
	}
	return j, apperrors.NotFound("jurisdiction has no administrative ids")
}

// FindRegencyByName resolves a regency by normalized name. Regency names are
// unique nationally once the KABUPATEN/KOTA prefix is kept.
func (s *Store) FindRegencyByName(ctx context.Context, name string) (*Regency, error) {
	var matches []Regency
	err := s.db.WithContext(ctx).
		Where("UPPER(TRIM(name)) = ?", NormalizeName(name)).
		Limit(2).Find(&matches).Error
	if err != nil {
		return nil, apperrors.Database("find regency by name", err)
	}
	if len(matches) == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("regency %q not found", name))
	}
	if len(matches) > 1 {
		return nil, apperrors.NotFound(fmt.Sprintf("regency name %q is ambiguous", name))
	}
	return &matches[0], nil
}

// FindDistrictByName resolves a district by normalized name within one regency.
// District names repeat across regencies, so the parent id is mandatory.
func (s *Store) FindDistrictByName(ctx context.Context, name, regencyID string) (*District, error) {
	var d District
	err := s.db.WithContext(ctx).
		Where("UPPER(TRIM(name)) = ? AND regency_id = ?", NormalizeName(name), regencyID).
		First(&d).Error
	if err != nil {
		return nil, wrapLookup("district", name, err)
	}
	return &d, nil
}

// FindVillageByName resolves a village by normalized name within one district.
// Village names are only unique inside their district+regency combination;
// callers must never assume global uniqueness.
func (s *Store) FindVillageByName(ctx context.Context, name, districtID string) (*Village, error) {
	var v Village
	err := s.db.WithContext(ctx).
		Where("UPPER(TRIM(name)) = ? AND district_id = ?", NormalizeName(name), districtID).
		First(&v).Error
	if err != nil {
		return nil, wrapLookup("village", name, err)
	}
	return &v, nil
}

// Centroid is one row of the name->coordinate fallback index consumed by the
// spatial resolver when a record carries names but no geometry.
type Centroid struct {
	Level        Level
	Name         string // normalized
	ParentLabel  string // normalized parent names, finest first
	Lat          float64
	Lng          float64
	Jurisdiction Jurisdiction
}

// Centroids materializes the fallback index from every region row that has a
// precomputed centroid. Ordered finest level first so the consumer can stop at
// the first hit.
func (s *Store) Centroids(ctx context.Context) ([]Centroid, error) {
	var out []Centroid

	var villages []Village
	if err := s.db.WithContext(ctx).
		Preload("District").Preload("District.Regency").
		Where("lat IS NOT NULL AND lng IS NOT NULL").Find(&villages).Error; err != nil {
		return nil, apperrors.Database("load village centroids", err)
	}
	for _, v := range villages {
		out = append(out, Centroid{
			Level:        LevelVillage,
			Name:         NormalizeName(v.Name),
			ParentLabel:  NormalizeName(v.District.Name + " " + v.District.Regency.Name),
			Lat:          *v.Lat,
			Lng:          *v.Lng,
			Jurisdiction: Jurisdiction{
				RegencyID:  v.District.RegencyID,
				DistrictID: v.DistrictID,
				VillageID:  v.ID,
			},
		})
	}

	var districts []District
	if err := s.db.WithContext(ctx).
		Preload("Regency").
		Where("lat IS NOT NULL AND lng IS NOT NULL").Find(&districts).Error; err != nil {
		return nil, apperrors.Database("load district centroids", err)
	}
	for _, d := range districts {
		out = append(out, Centroid{
			Level:        LevelDistrict,
			Name:         NormalizeName(d.Name),
			ParentLabel:  NormalizeName(d.Regency.Name),
			Lat:          *d.Lat,
			Lng:          *d.Lng,
			Jurisdiction: Jurisdiction{RegencyID: d.RegencyID, DistrictID: d.ID},
		})
	}

	var regencies []Regency
	if err := s.db.WithContext(ctx).
		Preload("Province").
		Where("lat IS NOT NULL AND lng IS NOT NULL").Find(&regencies).Error; err != nil {
		return nil, apperrors.Database("load regency centroids", err)
	}
	for _, r := range regencies {
		out = append(out, Centroid{
			Level:        LevelRegency,
			Name:         NormalizeName(r.Name),
			ParentLabel:  NormalizeName(r.Province.Name),
			Lat:          *r.Lat,
			Lng:          *r.Lng,
			Jurisdiction: Jurisdiction{ProvinceID: r.ProvinceID, RegencyID: r.ID},
		})
	}

	var provinces []Province
	if err := s.db.WithContext(ctx).
		Where("lat IS NOT NULL AND lng IS NOT NULL").Find(&provinces).Error; err != nil {
		return nil, apperrors.Database("load province centroids", err)
	}
	for _, p := range provinces {
		out = append(out, Centroid{
			Level:        LevelProvince,
			Name:         NormalizeName(p.Name),
			Lat:          *p.Lat,
			Lng:          *p.Lng,
			Jurisdiction: Jurisdiction{ProvinceID: p.ID},
		})
	}

	return out, nil
}

func wrapLookup(kind, key string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(fmt.Sprintf("%s %q not found", kind, key))
	}
	return apperrors.Database("lookup "+kind, err)
}
