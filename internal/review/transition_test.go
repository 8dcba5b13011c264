package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
)

func TestInReviewStatusPerEntity(t *testing.T) {
	got, err := InReviewStatus(EntitySubmission)
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, got)

	got, err = InReviewStatus(EntityFacilitySurvey)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, got)

	got, err = InReviewStatus(EntityHousingDevelopment)
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, got)

	_, err = InReviewStatus(EntityType("parcel"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestValidateTransitionHappyPaths(t *testing.T) {
	cases := []struct {
		entity  EntityType
		action  Action
		current string
		wantTo  string
	}{
		{EntitySubmission, ActionSubmit, StatusDraft, StatusSubmitted},
		{EntitySubmission, ActionStartReview, StatusSubmitted, StatusUnderReview},
		{EntitySubmission, ActionStartReview, StatusUnderReview, StatusUnderReview},
		{EntitySubmission, ActionApprove, StatusUnderReview, StatusApproved},
		{EntitySubmission, ActionResubmit, StatusDraft, StatusSubmitted},
		{EntityFacilitySurvey, ActionResubmit, StatusRejected, StatusSubmitted},
		{EntityFacilitySurvey, ActionStartReview, StatusSubmitted, StatusVerified},
		{EntityFacilitySurvey, ActionApprove, StatusVerified, StatusApproved},
		{EntityHousingDevelopment, ActionReject, StatusUnderReview, StatusRejected},
	}
	for _, tc := range cases {
		notes := ""
		if tc.action == ActionReject {
			notes = "incomplete documents"
		}
		from, to, err := validateTransition(tc.entity, tc.action, tc.current, notes)
		require.NoError(t, err, "%s %s from %s", tc.entity, tc.action, tc.current)
		assert.Contains(t, from, tc.current)
		assert.Equal(t, tc.wantTo, to)
	}
}

func TestValidateTransitionRejectRequiresNotes(t *testing.T) {
	_, _, err := validateTransition(EntitySubmission, ActionReject, StatusUnderReview, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestValidateTransitionFinalizedRecords(t *testing.T) {
	for _, current := range []string{StatusApproved, StatusHistory} {
		_, _, err := validateTransition(EntitySubmission, ActionApprove, current, "")
		appErr := apperrors.As(err)
		require.NotNil(t, appErr, "status %s", current)
		assert.Equal(t, apperrors.CodeRecordFinalized, appErr.Code)
	}

	// Submission rejection is terminal, resubmit included; a rejected facility
	// survey stays open for an author resubmit.
	_, _, err := validateTransition(EntitySubmission, ActionApprove, StatusRejected, "")
	assert.Equal(t, apperrors.CodeRecordFinalized, apperrors.As(err).Code)
	_, _, err = validateTransition(EntitySubmission, ActionResubmit, StatusRejected, "")
	assert.Equal(t, apperrors.CodeRecordFinalized, apperrors.As(err).Code)
	_, _, err = validateTransition(EntityFacilitySurvey, ActionResubmit, StatusRejected, "")
	assert.NoError(t, err)
}

func TestValidateTransitionOutOfOrder(t *testing.T) {
	_, _, err := validateTransition(EntitySubmission, ActionSubmit, StatusSubmitted, "")
	assert.True(t, apperrors.IsConflict(err))

	_, _, err = validateTransition(EntitySubmission, ActionApprove, StatusDraft, "")
	assert.True(t, apperrors.IsConflict(err))
}
