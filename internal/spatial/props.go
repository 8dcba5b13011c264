package spatial

import (
	"strings"
)

// Boundary datasets were ingested from several historical sources, each with
// its own property-key convention for administrative names. The candidate
// lists below are tried in order, case-insensitively, and the first non-empty
// value wins. The order matters: changing it silently switches which naming
// convention a mixed dataset resolves through.
var (
	villageNameKeys  = []string{"NAMOBJ", "WADMKD", "DESA", "NAME_4", "nama_desa", "desa_kelurahan"}
	districtNameKeys = []string{"WADMKC", "KECAMATAN", "NAME_3", "nama_kecamatan", "kecamatan"}
	regencyNameKeys  = []string{"WADMKK", "KABUPATEN", "NAME_2", "nama_kabupaten", "kab_kota"}
)

// propertyValue returns the first non-empty string value among the candidate
// keys, matching keys case-insensitively.
func propertyValue(props map[string]interface{}, candidates []string) string {
	if len(props) == 0 {
		return ""
	}
	// Index the bag once by lower-cased key; datasets are small bags, not
	// hot-path maps.
	lowered := make(map[string]interface{}, len(props))
	for k, v := range props {
		lowered[strings.ToLower(k)] = v
	}
	for _, key := range candidates {
		v, ok := lowered[strings.ToLower(key)]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// AdminNames are the three names extracted from a village-boundary feature.
type AdminNames struct {
	Village  string
	District string
	Regency  string
}

// extractAdminNames pulls the village, district and regency names out of a
// boundary feature's property bag. Empty fields mean the dataset lacks that
// naming convention entirely.
func extractAdminNames(props map[string]interface{}) AdminNames {
	return AdminNames{
		Village:  propertyValue(props, villageNameKeys),
		District: propertyValue(props, districtNameKeys),
		Regency:  propertyValue(props, regencyNameKeys),
	}
}
