package spatial

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/metrics"
	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// RegionDirectory is the slice of the region store the resolver needs. Tests
// substitute a fake; production passes *region.Store.
type RegionDirectory interface {
	ProvinceByID(ctx context.Context, id string) (*region.Province, error)
	RegencyByID(ctx context.Context, id string) (*region.Regency, error)
	DistrictByID(ctx context.Context, id string) (*region.District, error)
	VillageByID(ctx context.Context, id string) (*region.Village, error)
	FindRegencyByName(ctx context.Context, name string) (*region.Regency, error)
	FindDistrictByName(ctx context.Context, name, regencyID string) (*region.District, error)
	FindVillageByName(ctx context.Context, name, districtID string) (*region.Village, error)
}

// Resolver answers spatial questions: reverse geocoding, fallback coordinates
// for records without geometry, and layer-intersection filters for exports.
// It is safe for concurrent use; all state is read-only or internally locked.
type Resolver struct {
	db        *gorm.DB
	regions   RegionDirectory
	centroids *CentroidCache
	// limiter bounds the rate of expensive PostGIS intersection queries, the
	// longest-running operations in the subsystem.
	limiter      *rate.Limiter
	queryTimeout time.Duration
}

func NewResolver(db *gorm.DB, regions RegionDirectory, centroids *CentroidCache) *Resolver {
	return &Resolver{
		db:           db,
		regions:      regions,
		centroids:    centroids,
		limiter:      rate.NewLimiter(rate.Limit(50), 100),
		queryTimeout: 10 * time.Second,
	}
}

// ReverseGeocodeResult is the jurisdiction a coordinate resolves to, with the
// display names taken from the hierarchy tables (not the boundary dataset).
type ReverseGeocodeResult struct {
	Jurisdiction region.Jurisdiction `json:"jurisdiction"`
	ProvinceName string              `json:"province_name"`
	RegencyName  string              `json:"regency_name"`
	DistrictName string              `json:"district_name"`
	VillageName  string              `json:"village_name"`
}

// ReverseGeocode finds the village-boundary polygon containing the point and
// resolves its administrative names to hierarchy ids. A point outside every
// known polygon yields the outside-boundary error, which is distinct from a
// lookup miss; a polygon whose property bag lacks one of the three names
// yields the incomplete-admin-data error.
func (r *Resolver) ReverseGeocode(ctx context.Context, lat, lng float64) (*ReverseGeocodeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		SELECT properties
		FROM spatial_layers
		WHERE category = ? AND layer_name = ?
		AND ST_Contains(
			geom,
			ST_SetSRID(ST_MakePoint(?, ?), 4326)
		)
		LIMIT 1
	`
	var raw []byte
	err := r.db.WithContext(ctx).
		Raw(query, CategoryAdministrative, LayerVillageBoundary, lng, lat).
		Row().Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.ReverseGeocodeTotal.WithLabelValues("outside").Inc()
			return nil, apperrors.OutsideBoundary(lat, lng)
		}
		metrics.ReverseGeocodeTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Database("village boundary lookup", err)
	}

	result, err := r.resolveProperties(ctx, raw)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil && appErr.Code == apperrors.CodeIncompleteAdminData {
			metrics.ReverseGeocodeTotal.WithLabelValues("incomplete").Inc()
		} else {
			metrics.ReverseGeocodeTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	metrics.ReverseGeocodeTotal.WithLabelValues("hit").Inc()
	return result, nil
}

// resolveProperties turns a boundary row's property bag into a resolved
// jurisdiction. A bag missing any of the three administrative names yields the
// incomplete-admin-data error.
func (r *Resolver) resolveProperties(ctx context.Context, raw []byte) (*ReverseGeocodeResult, error) {
	var props map[string]interface{}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, apperrors.IncompleteAdminData("boundary properties are not valid JSON")
	}

	names := extractAdminNames(props)
	if names.Village == "" || names.District == "" || names.Regency == "" {
		return nil, apperrors.IncompleteAdminData(fmt.Sprintf(
			"village=%q district=%q regency=%q", names.Village, names.District, names.Regency))
	}
	return r.resolveNames(ctx, names)
}

// resolveNames walks the hierarchy top-down so that a village name, which is
// only unique within its district+regency combination, is disambiguated by its
// parents rather than assumed unique globally.
func (r *Resolver) resolveNames(ctx context.Context, names AdminNames) (*ReverseGeocodeResult, error) {
	regency, err := r.regions.FindRegencyByName(ctx, names.Regency)
	if err != nil {
		return nil, err
	}
	district, err := r.regions.FindDistrictByName(ctx, names.District, regency.ID)
	if err != nil {
		return nil, err
	}
	village, err := r.regions.FindVillageByName(ctx, names.Village, district.ID)
	if err != nil {
		return nil, err
	}
	province, err := r.regions.ProvinceByID(ctx, regency.ProvinceID)
	if err != nil {
		return nil, err
	}
	return &ReverseGeocodeResult{
		Jurisdiction: region.Jurisdiction{
			ProvinceID: province.ID,
			RegencyID:  regency.ID,
			DistrictID: district.ID,
			VillageID:  village.ID,
		},
		ProvinceName: province.Name,
		RegencyName:  regency.Name,
		DistrictName: district.Name,
		VillageName:  village.Name,
	}, nil
}

// wait blocks on the intersection-query rate limiter.
func (r *Resolver) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return apperrors.Database("spatial query limiter", err)
	}
	return nil
}
