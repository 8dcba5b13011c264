package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SiperumID/Siperum-Backend/internal/auth"
	"github.com/SiperumID/Siperum-Backend/internal/middleware"
)

// SetupRoutes mounts the review transition endpoint. The middleware gates on
// the review.transition permission; the handler then checks the target record
// against the actor's location scope.
func SetupRoutes(arbiter *Arbiter, users middleware.UserFetcher, evaluator AccessEvaluator) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequirePermission(users, evaluator, "review.transition"))
		r.Post("/{entity}/{id}/review", TransitionHandler(arbiter, users, evaluator))
	})

	return r
}
