package spatial

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/auth"
	"github.com/SiperumID/Siperum-Backend/internal/middleware"
	"github.com/SiperumID/Siperum-Backend/internal/region"
)

func jurisdictionOf(provinceID, regencyID, districtID, villageID string) region.Jurisdiction {
	return region.Jurisdiction{
		ProvinceID: provinceID,
		RegencyID:  regencyID,
		DistrictID: districtID,
		VillageID:  villageID,
	}
}

func SetupRoutes(resolver *Resolver, evaluator *access.Evaluator, users middleware.UserFetcher, allow AllowList) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/reverse-geocode", ReverseGeocodeHandler(resolver))
		r.Post("/fallback-coordinates", FallbackCoordinatesHandler(resolver))
		r.With(middleware.RequirePermission(users, evaluator, "export.spatial")).
			Post("/export-filter", ExportFilterHandler(resolver, evaluator, allow))
	})

	return r
}
