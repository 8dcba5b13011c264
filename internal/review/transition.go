package review

import (
	"fmt"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
)

// Action is a review transition requested by a reviewer or author.
type Action string

const (
	ActionSubmit      Action = "submit"
	ActionStartReview Action = "start_review"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionResubmit    Action = "resubmit"
)

// inReviewState names each entity's "in review" status. Facility surveys call
// it verified; the other two call it under_review. Historical naming kept
// per entity on purpose.
var inReviewState = map[EntityType]string{
	EntitySubmission:         StatusUnderReview,
	EntityFacilitySurvey:     StatusVerified,
	EntityHousingDevelopment: StatusUnderReview,
}

// resubmittableFrom lists the statuses an author may resubmit from. Submission
// rejection is terminal; a rejected facility survey or housing development is
// retryable and goes through a fresh review pass.
var resubmittableFrom = map[EntityType][]string{
	EntitySubmission:         {StatusDraft},
	EntityFacilitySurvey:     {StatusDraft, StatusRejected},
	EntityHousingDevelopment: {StatusDraft, StatusRejected},
}

// InReviewStatus exposes the entity's in-review status name.
func InReviewStatus(entity EntityType) (string, error) {
	s, ok := inReviewState[entity]
	if !ok {
		return "", apperrors.Validation(fmt.Sprintf("unknown entity type %q", entity))
	}
	return s, nil
}

// allowedFrom returns the statuses the action may start from for the entity.
func allowedFrom(entity EntityType, action Action) ([]string, error) {
	inReview, err := InReviewStatus(entity)
	if err != nil {
		return nil, err
	}
	switch action {
	case ActionSubmit:
		return []string{StatusDraft}, nil
	case ActionStartReview:
		// Re-entering review is idempotent to support multi-pass review.
		return []string{StatusSubmitted, inReview}, nil
	case ActionApprove, ActionReject:
		return []string{StatusSubmitted, inReview}, nil
	case ActionResubmit:
		return resubmittableFrom[entity], nil
	}
	return nil, apperrors.Validation(fmt.Sprintf("unknown review action %q", action))
}

// targetStatus returns the status the action lands on.
func targetStatus(entity EntityType, action Action) (string, error) {
	switch action {
	case ActionSubmit, ActionResubmit:
		return StatusSubmitted, nil
	case ActionStartReview:
		return InReviewStatus(entity)
	case ActionApprove:
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	}
	return "", apperrors.Validation(fmt.Sprintf("unknown review action %q", action))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// validateTransition checks the pure, per-entity rules before any write is
// attempted. The store re-checks the status set transactionally at commit.
func validateTransition(entity EntityType, action Action, current string, notes string) ([]string, string, error) {
	from, err := allowedFrom(entity, action)
	if err != nil {
		return nil, "", err
	}
	to, err := targetStatus(entity, action)
	if err != nil {
		return nil, "", err
	}
	if action == ActionReject && notes == "" {
		return nil, "", apperrors.Validation("a rejection requires review notes")
	}
	if !contains(from, current) {
		// Finalized records surface a distinct conflict so callers do not
		// retry them.
		if current == StatusApproved || current == StatusRejected || current == StatusHistory {
			return nil, "", apperrors.Finalized(fmt.Sprintf("record is %s and can no longer be reviewed", current))
		}
		return nil, "", apperrors.Conflict(fmt.Sprintf("cannot %s a record in status %q", action, current))
	}
	return from, to, nil
}
