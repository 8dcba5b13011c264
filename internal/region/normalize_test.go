package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Kabupaten Bogor", "KABUPATEN BOGOR"},
		{"  kabupaten   bogor  ", "KABUPATEN BOGOR"},
		{"kota\tbandung", "KOTA BANDUNG"},
		{"Cirèbon", "CIREBON"},
		{"DKI Jakarta", "DKI JAKARTA"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	once := NormalizeName("Kepulauan   Seribu")
	assert.Equal(t, once, NormalizeName(once))
}
