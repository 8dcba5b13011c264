package spatial

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
)

func testResolver() *Resolver {
	return NewResolver(nil, nil, NewCentroidCache(nil, nil))
}

func TestBuildFilter_AllowListValidation(t *testing.T) {
	r := testResolver()
	allow := DefaultAllowList()

	filter, label, err := r.BuildFilter([]LayerSelector{
		{Category: CategoryHazard, LayerName: "krb_banjir_tinggi"},
	}, allow)
	require.NoError(t, err)
	require.NotNil(t, filter)
	assert.Equal(t, "KRB Banjir Tinggi", label)

	// A layer outside the allow-list is a validation error, not a silent skip.
	_, _, err = r.BuildFilter([]LayerSelector{
		{Category: CategoryHazard, LayerName: "krb_banjir_rahasia"},
	}, allow)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Empty selector sets are rejected.
	_, _, err = r.BuildFilter(nil, allow)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestBuildFilter_SafeIdentifierPattern(t *testing.T) {
	r := testResolver()
	allow := DefaultAllowList()

	bad := []LayerSelector{
		{Category: "bencana; DROP TABLE spatial_layers", LayerName: "krb_banjir_tinggi"},
		{Category: "bencana", LayerName: "krb banjir"},
		{Category: "Bencana", LayerName: "krb_banjir_tinggi"},
		{Category: "bencana", LayerName: ""},
	}
	for _, sel := range bad {
		_, _, err := r.BuildFilter([]LayerSelector{sel}, allow)
		require.Error(t, err, "selector %+v must be rejected", sel)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	}
}

func TestLayerFilter_Label(t *testing.T) {
	f := &LayerFilter{selectors: []LayerSelector{
		{Category: CategoryHazard, LayerName: "krb_banjir_tinggi"},
		{Category: CategoryLandUse, LayerName: "kawasan_lindung"},
	}}
	assert.Equal(t, "KRB Banjir Tinggi, Kawasan Lindung", f.Label())
}

func TestLayerFilter_PointPredicate(t *testing.T) {
	f := &LayerFilter{selectors: []LayerSelector{
		{Category: CategoryHazard, LayerName: "krb_banjir_tinggi"},
		{Category: CategoryHazard, LayerName: "krb_longsor_tinggi"},
	}}

	cond, args := f.PointPredicate("s.lat", "s.lng")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(cond), "EXISTS ("))
	assert.Contains(t, cond, "ST_Intersects")
	assert.Contains(t, cond, "ST_MakePoint(s.lng, s.lat)")
	// One (category, layer_name) pair per selector, bound as parameters.
	assert.Equal(t, []interface{}{CategoryHazard, "krb_banjir_tinggi", CategoryHazard, "krb_longsor_tinggi"}, args)
	assert.Equal(t, 2, strings.Count(cond, "sl.category = ?"))
}

func TestLayerFilter_LayerSets(t *testing.T) {
	f := &LayerFilter{selectors: []LayerSelector{
		{Category: CategoryHazard, LayerName: "krb_banjir_tinggi"},
		{Category: CategoryHazard, LayerName: "krb_longsor_tinggi"},
		{Category: CategoryLandUse, LayerName: "kawasan_lindung"},
	}}
	categories, names := f.layerSets()
	assert.Equal(t, []string{CategoryHazard, CategoryLandUse}, categories)
	assert.Equal(t, []string{"krb_banjir_tinggi", "krb_longsor_tinggi", "kawasan_lindung"}, names)
}

func TestLoadAllowList_FallsBackToDefault(t *testing.T) {
	t.Setenv("SPATIAL_LAYERS_CONFIG", "")
	list := LoadAllowList()
	assert.True(t, list.permits(LayerSelector{Category: CategoryHazard, LayerName: "krb_banjir_tinggi"}))

	t.Setenv("SPATIAL_LAYERS_CONFIG", "/nonexistent/layers.yaml")
	list = LoadAllowList()
	assert.True(t, list.permits(LayerSelector{Category: CategoryLandUse, LayerName: "kawasan_lindung"}))
}

func TestLoadAllowList_FromYAML(t *testing.T) {
	path := t.TempDir() + "/layers.yaml"
	content := `layers:
  - category: bencana
    layers: [krb_custom_zone]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SPATIAL_LAYERS_CONFIG", path)

	list := LoadAllowList()
	assert.True(t, list.permits(LayerSelector{Category: CategoryHazard, LayerName: "krb_custom_zone"}))
	assert.False(t, list.permits(LayerSelector{Category: CategoryHazard, LayerName: "krb_banjir_tinggi"}))
}
