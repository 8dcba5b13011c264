package spatial

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/lib/pq"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/metrics"
	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// LayerSelector names one exportable layer.
type LayerSelector struct {
	Category  string `json:"category"`
	LayerName string `json:"layer_name"`
}

// safeIdent rejects selector parts that could not be a layer identifier.
// Selectors reach SQL only as bind parameters, but the allow-list file and
// filter labels are built from these strings, so they are validated anyway.
var safeIdent = regexp.MustCompile(`^[a-z0-9_]+$`)

// AllowList is the fixed set of layers exports may filter on, loaded from the
// service configuration.
type AllowList struct {
	Entries []AllowedCategory `yaml:"layers"`
}

type AllowedCategory struct {
	Category string   `yaml:"category"`
	Layers   []string `yaml:"layers"`
}

func (a AllowList) permits(sel LayerSelector) bool {
	for _, e := range a.Entries {
		if e.Category != sel.Category {
			continue
		}
		for _, l := range e.Layers {
			if l == sel.LayerName {
				return true
			}
		}
	}
	return false
}

// DefaultAllowList covers the layers every deployment ships with.
func DefaultAllowList() AllowList {
	return AllowList{Entries: []AllowedCategory{
		{Category: CategoryHazard, Layers: []string{
			"krb_banjir_tinggi", "krb_banjir_sedang", "krb_banjir_rendah",
			"krb_longsor_tinggi", "krb_longsor_sedang",
			"krb_gempa", "krb_tsunami",
		}},
		{Category: CategoryLandUse, Layers: []string{
			"kawasan_permukiman", "kawasan_lindung", "kawasan_pertanian",
		}},
		{Category: CategoryInfrastructure, Layers: []string{
			"jaringan_jalan", "jaringan_air_minum",
		}},
	}}
}

// LoadAllowList reads the allow-list from the path in SPATIAL_LAYERS_CONFIG,
// falling back to the built-in default when unset or unreadable.
func LoadAllowList() AllowList {
	path := os.Getenv("SPATIAL_LAYERS_CONFIG")
	if path == "" {
		return DefaultAllowList()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return DefaultAllowList()
	}
	var list AllowList
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return DefaultAllowList()
	}
	return list
}

// LayerFilter is a validated spatial predicate over a set of selected layers.
type LayerFilter struct {
	selectors []LayerSelector
	resolver  *Resolver
}

// BuildFilter validates the selectors against the allow-list and the safe
// identifier pattern and returns the filter plus its human-readable label.
func (r *Resolver) BuildFilter(selectors []LayerSelector, allow AllowList) (*LayerFilter, string, error) {
	if len(selectors) == 0 {
		return nil, "", apperrors.Validation("at least one layer selector is required")
	}
	for _, sel := range selectors {
		if !safeIdent.MatchString(sel.Category) || !safeIdent.MatchString(sel.LayerName) {
			return nil, "", apperrors.Validation(fmt.Sprintf("invalid layer selector %q/%q", sel.Category, sel.LayerName))
		}
		if !allow.permits(sel) {
			return nil, "", apperrors.Validation(fmt.Sprintf("layer %q/%q is not exportable", sel.Category, sel.LayerName))
		}
	}
	f := &LayerFilter{selectors: selectors, resolver: r}
	return f, f.Label(), nil
}

// Label renders the selected layer names for report headings, e.g.
// "KRB Banjir Tinggi, Kawasan Lindung".
func (f *LayerFilter) Label() string {
	parts := make([]string, 0, len(f.selectors))
	for _, sel := range f.selectors {
		words := strings.Split(sel.LayerName, "_")
		for i, w := range words {
			if w == "krb" {
				words[i] = "KRB"
			} else if len(w) > 0 {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, ", ")
}

// selectorCondition builds the "(category, layer_name) in selection" SQL
// fragment for the given alias.
func (f *LayerFilter) selectorCondition(alias string) (string, []interface{}) {
	conds := make([]string, 0, len(f.selectors))
	args := make([]interface{}, 0, 2*len(f.selectors))
	for _, sel := range f.selectors {
		conds = append(conds, fmt.Sprintf("(%s.category = ? AND %s.layer_name = ?)", alias, alias))
		args = append(args, sel.Category, sel.LayerName)
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// layerSets returns the distinct categories and layer names of the selection
// for array binds in raw queries. Layer names are unique across categories in
// the allow-list, so the pair condition reduces to two ANY matches.
func (f *LayerFilter) layerSets() (categories, names []string) {
	seenCat := map[string]bool{}
	for _, sel := range f.selectors {
		if !seenCat[sel.Category] {
			seenCat[sel.Category] = true
			categories = append(categories, sel.Category)
		}
		names = append(names, sel.LayerName)
	}
	return categories, names
}

// PointPredicate returns a SQL EXISTS condition selecting rows of a record
// table whose point geometry intersects any selected layer. latCol/lngCol name
// the record table's coordinate columns.
func (f *LayerFilter) PointPredicate(latCol, lngCol string) (string, []interface{}) {
	sel, args := f.selectorCondition("sl")
	cond := fmt.Sprintf(`EXISTS (
		SELECT 1 FROM spatial_layers sl
		WHERE %s
		AND ST_Intersects(sl.geom, ST_SetSRID(ST_MakePoint(%s, %s), 4326))
	)`, sel, lngCol, latCol)
	return cond, args
}

// RecordLocation is the geometry a reviewable record contributes to the
// intersection filter: its point if it has one, otherwise its jurisdiction.
type RecordLocation struct {
	Lat          *float64
	Lng          *float64
	Jurisdiction region.Jurisdiction
}

// MatchesRecord reports whether the record's location intersects any selected
// layer, plus the label of the layers it matched. Records without a point fall
// back to the two-hop join: the administrative polygon that would contain the
// record (village, else district, else regency) intersected with the target
// layers. The two-hop result depends on each record's own jurisdiction fields
// and is therefore computed per record, never cached globally.
func (f *LayerFilter) MatchesRecord(ctx context.Context, rec RecordLocation) (bool, string, error) {
	r := f.resolver
	if err := r.wait(ctx); err != nil {
		return false, "", err
	}
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.SpatialFilterDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	if rec.Lat != nil && rec.Lng != nil {
		return f.matchPoint(ctx, *rec.Lat, *rec.Lng)
	}
	return f.matchViaAdminPolygon(ctx, rec.Jurisdiction)
}

func (f *LayerFilter) matchPoint(ctx context.Context, lat, lng float64) (bool, string, error) {
	categories, names := f.layerSets()
	query := `
		SELECT DISTINCT sl.layer_name
		FROM spatial_layers sl
		WHERE sl.category = ANY(?) AND sl.layer_name = ANY(?)
		AND ST_Intersects(sl.geom, ST_SetSRID(ST_MakePoint(?, ?), 4326))
	`

	var layers []string
	if err := f.resolver.db.WithContext(ctx).
		Raw(query, pq.Array(categories), pq.Array(names), lng, lat).
		Scan(&layers).Error; err != nil {
		return false, "", apperrors.Database("point layer intersection", err)
	}
	return len(layers) > 0, f.matchedLabel(layers), nil
}

// adminBoundaryLayers maps each tier to its boundary layer and the property
// keys that carry the region name in that layer.
var adminBoundaryLayers = map[region.Level]struct {
	layerName string
	nameKeys  []string
}{
	region.LevelVillage:  {"batas_desa", villageNameKeys},
	region.LevelDistrict: {"batas_kecamatan", districtNameKeys},
	region.LevelRegency:  {"batas_kabupaten", regencyNameKeys},
}

// matchViaAdminPolygon is the two-hop spatial join: select the administrative
// polygon whose name matches the record's finest region, then intersect it
// with the target layers.
func (f *LayerFilter) matchViaAdminPolygon(ctx context.Context, j region.Jurisdiction) (bool, string, error) {
	lvl := j.Level()
	for ; lvl != "" && lvl != region.LevelProvince; lvl = lvl.Coarser() {
		boundary, ok := adminBoundaryLayers[lvl]
		if !ok {
			continue
		}
		name, err := f.resolver.regionName(ctx, lvl, j.IDAt(lvl))
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return false, "", err
		}

		// Property keys vary per dataset vintage; accept a name match on any
		// candidate key.
		nameConds := make([]string, 0, len(boundary.nameKeys))
		args := []interface{}{CategoryAdministrative, boundary.layerName}
		for _, key := range boundary.nameKeys {
			nameConds = append(nameConds, "UPPER(TRIM(a.properties->>?)) = ?")
			args = append(args, key, region.NormalizeName(name))
		}
		categories, names := f.layerSets()
		args = append(args, pq.Array(categories), pq.Array(names))

		query := fmt.Sprintf(`
			SELECT DISTINCT t.layer_name
			FROM spatial_layers a
			JOIN spatial_layers t ON ST_Intersects(a.geom, t.geom)
			WHERE a.category = ? AND a.layer_name = ?
			AND (%s)
			AND t.category = ANY(?) AND t.layer_name = ANY(?)
		`, strings.Join(nameConds, " OR "))

		var layers []string
		if err := f.resolver.db.WithContext(ctx).Raw(query, args...).Scan(&layers).Error; err != nil {
			return false, "", apperrors.Database("administrative polygon intersection", err)
		}
		if len(layers) > 0 {
			return true, f.matchedLabel(layers), nil
		}
		// No polygon or no overlap at this tier: try the coarser one.
	}
	return false, "", nil
}

func (f *LayerFilter) matchedLabel(layerNames []string) string {
	if len(layerNames) == 0 {
		return ""
	}
	matched := make([]LayerSelector, 0, len(layerNames))
	for _, sel := range f.selectors {
		for _, name := range layerNames {
			if sel.LayerName == name {
				matched = append(matched, sel)
			}
		}
	}
	sub := &LayerFilter{selectors: matched}
	return sub.Label()
}

// regionName resolves a region id to its display name for the property match.
func (r *Resolver) regionName(ctx context.Context, lvl region.Level, id string) (string, error) {
	if id == "" {
		return "", apperrors.NotFound("no region id at tier " + string(lvl))
	}
	switch lvl {
	case region.LevelVillage:
		v, err := r.regions.VillageByID(ctx, id)
		if err != nil {
			return "", err
		}
		return v.Name, nil
	case region.LevelDistrict:
		d, err := r.regions.DistrictByID(ctx, id)
		if err != nil {
			return "", err
		}
		return d.Name, nil
	case region.LevelRegency:
		rg, err := r.regions.RegencyByID(ctx, id)
		if err != nil {
			return "", err
		}
		return rg.Name, nil
	}
	return "", apperrors.NotFound("no boundary layer for tier " + string(lvl))
}
