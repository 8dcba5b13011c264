package spatial

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/db"
	"github.com/SiperumID/Siperum-Backend/internal/utils"
)

// ReverseGeocodeHandler resolves ?lat=&lng= to a jurisdiction.
func ReverseGeocodeHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			http.Error(w, "lat and lng query params are required", http.StatusBadRequest)
			return
		}

		result, err := resolver.ReverseGeocode(r.Context(), lat, lng)
		if err != nil {
			writeAppError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// FallbackCoordinatesHandler approximates coordinates from jurisdiction names.
func FallbackCoordinatesHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var names FallbackNames
		if err := json.NewDecoder(r.Body).Decode(&names); err != nil {
			http.Error(w, "Invalid Request Format", http.StatusBadRequest)
			return
		}

		ll, err := resolver.ResolveFallbackCoordinates(r.Context(), names)
		if err != nil {
			writeAppError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if ll == nil {
			json.NewEncoder(w).Encode(map[string]interface{}{"found": false})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"found": true, "lat": ll.Lat, "lng": ll.Lng})
	}
}

type exportFilterRequest struct {
	Selectors []LayerSelector `json:"selectors"`
}

type exportFilterResponse struct {
	Label   string   `json:"label"`
	Matches []string `json:"matches"`
}

// ExportFilterHandler lists the submissions inside the caller's scope whose
// location intersects the selected layers. Records with a point geometry are
// filtered in SQL; records without one go through the per-record two-hop join.
func ExportFilterHandler(resolver *Resolver, evaluator *access.Evaluator, allow AllowList) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportFilterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid Request Format", http.StatusBadRequest)
			return
		}

		filter, label, err := resolver.BuildFilter(req.Selectors, allow)
		if err != nil {
			writeAppError(w, err)
			return
		}

		userID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
			return
		}
		var user access.User
		if err := db.DB.WithContext(r.Context()).First(&user, "user_id = ?", userID).Error; err != nil {
			http.Error(w, "Unauthorized: user not found", http.StatusUnauthorized)
			return
		}
		scope, err := evaluator.ResolveScope(r.Context(), &user)
		if err != nil {
			writeAppError(w, err)
			return
		}

		// Pointful records: one SQL pass with the EXISTS predicate.
		cond, args := filter.PointPredicate("s.lat", "s.lng")
		var matched []string
		q := db.DB.WithContext(r.Context()).
			Table("submissions s").
			Select("s.id").
			Where("s.lat IS NOT NULL AND s.lng IS NOT NULL").
			Where(cond, args...)
		if err := scope.Filter(q).Scan(&matched).Error; err != nil {
			writeAppError(w, apperrors.Database("spatial export query", err))
			return
		}

		// Pointless records: two-hop join per record, since the administrative
		// polygon depends on each record's own jurisdiction.
		type pointlessRow struct {
			ID         string
			ProvinceID string
			RegencyID  string
			DistrictID string
			VillageID  string
		}
		var pointless []pointlessRow
		q = db.DB.WithContext(r.Context()).
			Table("submissions s").
			Select("s.id, s.province_id, s.regency_id, s.district_id, s.village_id").
			Where("s.lat IS NULL OR s.lng IS NULL")
		if err := scope.Filter(q).Scan(&pointless).Error; err != nil {
			writeAppError(w, apperrors.Database("spatial export query", err))
			return
		}
		for _, row := range pointless {
			hit, _, err := filter.MatchesRecord(r.Context(), RecordLocation{
				Jurisdiction: jurisdictionOf(row.ProvinceID, row.RegencyID, row.DistrictID, row.VillageID),
			})
			if err != nil {
				writeAppError(w, err)
				return
			}
			if hit {
				matched = append(matched, row.ID)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(exportFilterResponse{Label: label, Matches: matched})
	}
}

func writeAppError(w http.ResponseWriter, err error) {
	if appErr := apperrors.As(err); appErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.HTTPStatus())
		json.NewEncoder(w).Encode(map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
