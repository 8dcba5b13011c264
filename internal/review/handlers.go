package review

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/middleware"
	"github.com/SiperumID/Siperum-Backend/internal/utils"
)

// AccessEvaluator is the slice of the access evaluator the review routes
// need: the route-level permission gate plus the per-record scope decision.
type AccessEvaluator interface {
	HasPermission(ctx context.Context, u *access.User, name string) (bool, error)
	RoleSlugs(ctx context.Context, userID string) ([]string, error)
	CanAccessResource(ctx context.Context, u *access.User, resourceType, action, resourceID string) (bool, error)
}

// entityParams maps URL segments to entity types.
var entityParams = map[string]EntityType{
	"submissions":          EntitySubmission,
	"facility-surveys":     EntityFacilitySurvey,
	"housing-developments": EntityHousingDevelopment,
}

type transitionRequest struct {
	Action Action `json:"action"`
	Notes  string `json:"notes"`
}

type transitionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TransitionHandler applies one review action to one record. Holding the
// review.transition permission is not enough: the record must also fall
// inside the actor's location scope, so a village admin cannot review a
// neighboring village's submissions.
func TransitionHandler(arbiter *Arbiter, users middleware.UserFetcher, evaluator AccessEvaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, ok := entityParams[chi.URLParam(r, "entity")]
		if !ok {
			http.Error(w, "Unknown entity type", http.StatusNotFound)
			return
		}
		recordID := chi.URLParam(r, "id")

		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid Request Format", http.StatusBadRequest)
			return
		}

		userID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
			return
		}
		user, err := users.FindUserByID(r.Context(), userID)
		if err != nil || user == nil {
			http.Error(w, "Unauthorized: unknown user", http.StatusUnauthorized)
			return
		}

		allowed, err := evaluator.CanAccessResource(r.Context(), user, string(entity), "update", recordID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if !allowed {
			writeAppError(w, apperrors.AccessDenied("record is outside the actor's jurisdiction"))
			return
		}

		slugs, err := evaluator.RoleSlugs(r.Context(), userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		actor := Actor{UserID: userID}
		for _, slug := range slugs {
			if slug == access.RoleSuperAdmin {
				actor.Bypass = true
			}
		}

		newStatus, err := arbiter.Transition(r.Context(), RecordRef{Entity: entity, ID: recordID}, req.Action, actor, req.Notes)
		if err != nil {
			writeAppError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transitionResponse{ID: recordID, Status: newStatus})
	}
}

// writeAppError maps the error taxonomy onto HTTP. Unknown errors stay 500
// with a generic body.
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
