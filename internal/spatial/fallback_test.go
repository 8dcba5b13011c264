package spatial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// fakeCentroids serves a fixed centroid index and counts loads.
type fakeCentroids struct {
	rows  []region.Centroid
	loads int
}

func (f *fakeCentroids) Centroids(context.Context) ([]region.Centroid, error) {
	f.loads++
	return f.rows, nil
}

func fallbackFixture() *fakeCentroids {
	return &fakeCentroids{rows: []region.Centroid{
		{
			Level:       region.LevelVillage,
			Name:        "SUKAMAJU",
			ParentLabel: "CIBINONG KABUPATEN BOGOR",
			Lat:         -6.48, Lng: 106.85,
		},
		{
			// Same village name in a different district.
			Level:       region.LevelVillage,
			Name:        "SUKAMAJU",
			ParentLabel: "CILEUNGSI KABUPATEN BOGOR",
			Lat:         -6.40, Lng: 106.96,
		},
		{
			Level:       region.LevelDistrict,
			Name:        "CIBINONG",
			ParentLabel: "KABUPATEN BOGOR",
			Lat:         -6.49, Lng: 106.84,
		},
		{
			Level:       region.LevelRegency,
			Name:        "KABUPATEN BOGOR",
			ParentLabel: "JAWA BARAT",
			Lat:         -6.55, Lng: 106.80,
		},
		{
			Level: region.LevelProvince,
			Name:  "JAWA BARAT",
			Lat:   -6.90, Lng: 107.60,
		},
	}}
}

func fallbackResolver(src CentroidSource) *Resolver {
	return NewResolver(nil, nil, NewCentroidCache(src, nil))
}

func TestResolveFallbackCoordinates_QualifiedVillageMatch(t *testing.T) {
	r := fallbackResolver(fallbackFixture())

	ll, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{
		Village:  "sukamaju",
		District: "Cileungsi",
		Regency:  "Kabupaten Bogor",
	})
	require.NoError(t, err)
	require.NotNil(t, ll)
	// The parent label disambiguates between the two Sukamaju villages.
	assert.InDelta(t, -6.40, ll.Lat, 1e-9)
	assert.InDelta(t, 106.96, ll.Lng, 1e-9)
}

func TestResolveFallbackCoordinates_NameNormalization(t *testing.T) {
	r := fallbackResolver(fallbackFixture())

	ll, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{
		Village:  "  sukamaju ",
		District: "CIBINONG",
		Regency:  "kabupaten   bogor",
	})
	require.NoError(t, err)
	require.NotNil(t, ll)
	assert.InDelta(t, -6.48, ll.Lat, 1e-9)
}

func TestResolveFallbackCoordinates_LevelFallbackChain(t *testing.T) {
	r := fallbackResolver(fallbackFixture())

	// Unknown village falls through to the district centroid via the
	// name-only retry at the village tier failing entirely.
	ll, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{
		Village:  "Desa Tidak Ada",
		District: "Cibinong",
		Regency:  "Kabupaten Bogor",
	})
	require.NoError(t, err)
	require.NotNil(t, ll)
	assert.InDelta(t, -6.49, ll.Lat, 1e-9)

	// Only a regency name: regency centroid.
	ll, err = r.ResolveFallbackCoordinates(context.Background(), FallbackNames{Regency: "Kabupaten Bogor"})
	require.NoError(t, err)
	require.NotNil(t, ll)
	assert.InDelta(t, -6.55, ll.Lat, 1e-9)

	// Only a province name: province centroid.
	ll, err = r.ResolveFallbackCoordinates(context.Background(), FallbackNames{Province: "Jawa Barat"})
	require.NoError(t, err)
	require.NotNil(t, ll)
	assert.InDelta(t, -6.90, ll.Lat, 1e-9)
}

func TestResolveFallbackCoordinates_NameOnlyFallback(t *testing.T) {
	r := fallbackResolver(fallbackFixture())

	// Qualified key misses (wrong parent), but the name-only index still has
	// the village; the first entry wins.
	ll, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{
		Village:  "Sukamaju",
		District: "Kecamatan Salah",
		Regency:  "Kabupaten Salah",
	})
	require.NoError(t, err)
	require.NotNil(t, ll)
	assert.InDelta(t, -6.48, ll.Lat, 1e-9)
}

func TestResolveFallbackCoordinates_MissIsNotAnError(t *testing.T) {
	r := fallbackResolver(fallbackFixture())

	ll, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{Village: "Antah Berantah"})
	require.NoError(t, err)
	assert.Nil(t, ll)

	ll, err = r.ResolveFallbackCoordinates(context.Background(), FallbackNames{})
	require.NoError(t, err)
	assert.Nil(t, ll)
}

func TestCentroidCache_LoadsOnceUntilInvalidated(t *testing.T) {
	src := fallbackFixture()
	r := fallbackResolver(src)

	for i := 0; i < 3; i++ {
		_, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{Regency: "Kabupaten Bogor"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.loads, "index is built once and reused")

	r.centroids.Invalidate(context.Background())
	_, err := r.ResolveFallbackCoordinates(context.Background(), FallbackNames{Regency: "Kabupaten Bogor"})
	require.NoError(t, err)
	assert.Equal(t, 2, src.loads, "invalidation forces a rebuild on next lookup")
}
