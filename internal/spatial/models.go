package spatial

import (
	"time"

	"gorm.io/datatypes"
)

// SpatialFeature is one feature of a named layer: an administrative boundary,
// hazard zone, land-use zone or infrastructure geometry with a free-form
// property bag. Rows are reference data refreshed out of band.
type SpatialFeature struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Category  string         `gorm:"size:64;index:idx_layer,priority:1" json:"category"`
	LayerName string         `gorm:"size:64;index:idx_layer,priority:2;column:layer_name" json:"layer_name"`
	// Geometry column managed through raw PostGIS SQL; gorm never touches it.
	Geom       string         `gorm:"type:geometry;->:false;<-:false" json:"-"`
	Properties datatypes.JSON `gorm:"type:jsonb" json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (SpatialFeature) TableName() string { return "spatial_layers" }

// Layer categories used by the resolver and the export filter.
const (
	CategoryAdministrative = "batas_administrasi"
	CategoryHazard         = "bencana"
	CategoryLandUse        = "pola_ruang"
	CategoryInfrastructure = "infrastruktur"
)

// LayerVillageBoundary is the administrative layer used for reverse geocoding.
const LayerVillageBoundary = "batas_desa"

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
