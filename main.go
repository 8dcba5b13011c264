package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/auth"
	"github.com/SiperumID/Siperum-Backend/internal/cache"
	"github.com/SiperumID/Siperum-Backend/internal/db"
	"github.com/SiperumID/Siperum-Backend/internal/metrics"
	"github.com/SiperumID/Siperum-Backend/internal/middleware"
	"github.com/SiperumID/Siperum-Backend/internal/notify"
	"github.com/SiperumID/Siperum-Backend/internal/region"
	"github.com/SiperumID/Siperum-Backend/internal/review"
	"github.com/SiperumID/Siperum-Backend/internal/spatial"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	region.Init()
	access.Init()
	auth.Init()
	review.Init()
	spatial.Init()

	regions := region.NewStore(db.DB)
	centroids := spatial.NewCentroidCache(regions, cache.OpenFromEnv())
	resolver := spatial.NewResolver(db.DB, regions, centroids)
	evaluator := access.NewEvaluator(access.NewDBGrantSource(db.DB), review.NewLocator(db.DB))
	arbiter := review.NewArbiter(
		review.NewDBStore(db.DB),
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTransaction(ctx, db.DB, fn)
		},
		notify.FromEnv(),
	)
	users := auth.UserInfo{}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/review", review.SetupRoutes(arbiter, users, evaluator))
	r.Mount("/spatial", spatial.SetupRoutes(resolver, evaluator, users, spatial.LoadAllowList()))

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
