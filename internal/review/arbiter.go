package review

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/metrics"
	"github.com/SiperumID/Siperum-Backend/internal/notify"
)

// RecordRef addresses one reviewable record.
type RecordRef struct {
	Entity EntityType
	ID     string
}

// RecordState is the snapshot the arbiter reasons about.
type RecordState struct {
	ID                 string
	Status             string
	VerificationStatus string
	VerifiedBy         *string
	CreatedBy          string
	OwnerNIK           string // submissions only
	AuthorEmail        string
	AuthorName         string
}

// Update describes the write produced by a validated transition.
type Update struct {
	NewStatus          string
	VerificationStatus string
	VerifiedBy         *string
	ClearVerifier      bool
	VerifiedAt         *time.Time
	ReviewNotes        *string
}

// Guard is the transactional condition the store must enforce at commit time:
// the row's status must still be in FromStatuses, and unless Bypass is set the
// verifier column must be null or equal to Reviewer. A guard miss means a
// concurrent reviewer won the race.
type Guard struct {
	FromStatuses []string
	Reviewer     string
	Bypass       bool
}

// Store persists reviewable records. The gorm implementation lives in
// store.go; tests substitute an in-memory fake.
type Store interface {
	Get(ctx context.Context, ref RecordRef) (RecordState, error)
	// ApplyTransition performs a conditional update under the guard and
	// reports whether a row was affected.
	ApplyTransition(ctx context.Context, ref RecordRef, upd Update, guard Guard) (bool, error)
	// SupersedeApproved force-transitions every other approved submission of
	// the owner to history.
	SupersedeApproved(ctx context.Context, ownerNIK, exceptID string) (int64, error)
	AppendAudit(ctx context.Context, entry AuditLog) error
}

// TxRunner wraps fn in one storage transaction. In production this is
// db.RunInTransaction; tests run fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Actor is the user attempting a transition. Bypass is true for scope-bypassing
// roles (super_admin), which may take over another reviewer's lock.
type Actor struct {
	UserID string
	Bypass bool
}

// Arbiter serializes review transitions per record. The single-reviewer lock is
// advisory (keyed on verified_by equality), so every write re-checks status and
// verifier inside one transaction via the store guard.
type Arbiter struct {
	store    Store
	tx       TxRunner
	notifier notify.Notifier
}

func NewArbiter(store Store, tx TxRunner, notifier notify.Notifier) *Arbiter {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Arbiter{store: store, tx: tx, notifier: notifier}
}

// Transition applies one review action and returns the new status.
func (a *Arbiter) Transition(ctx context.Context, ref RecordRef, action Action, actor Actor, notes string) (string, error) {
	state, err := a.store.Get(ctx, ref)
	if err != nil {
		return "", err
	}

	from, to, err := validateTransition(ref.Entity, action, state.Status, notes)
	if err != nil {
		if apperrors.IsConflict(err) {
			metrics.ReviewConflictsTotal.Inc()
		}
		return "", err
	}

	switch action {
	case ActionSubmit, ActionResubmit:
		// Author-only actions; jurisdiction scoping does not apply to one's
		// own record.
		if actor.UserID != state.CreatedBy && !actor.Bypass {
			return "", apperrors.AccessDenied(fmt.Sprintf("user %s is not the author of %s/%s", actor.UserID, ref.Entity, ref.ID))
		}
	default:
		inReview, _ := InReviewStatus(ref.Entity)
		if state.Status == inReview && state.VerifiedBy != nil && *state.VerifiedBy != actor.UserID && !actor.Bypass {
			metrics.ReviewConflictsTotal.Inc()
			return "", apperrors.Conflict("record is locked by another reviewer")
		}
	}

	upd := buildUpdate(action, to, actor, notes)
	guard := Guard{FromStatuses: from, Reviewer: actor.UserID, Bypass: actor.Bypass || action == ActionSubmit || action == ActionResubmit}

	err = a.tx(ctx, func(ctx context.Context) error {
		applied, err := a.store.ApplyTransition(ctx, ref, upd, guard)
		if err != nil {
			return err
		}
		if !applied {
			// Another reviewer committed first; the pre-check above cannot
			// prevent this race, only the guard can.
			return apperrors.Conflict("record was modified by a concurrent review, retry with fresh state")
		}
		if action == ActionApprove && ref.Entity == EntitySubmission && state.OwnerNIK != "" {
			if _, err := a.store.SupersedeApproved(ctx, state.OwnerNIK, ref.ID); err != nil {
				return err
			}
		}
		return a.store.AppendAudit(ctx, AuditLog{
			Entity:     ref.Entity,
			RecordID:   ref.ID,
			OldStatus:  state.Status,
			NewStatus:  to,
			ReviewerID: actor.UserID,
			Notes:      notes,
		})
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			metrics.ReviewConflictsTotal.Inc()
		}
		return "", err
	}

	metrics.ReviewTransitionsTotal.WithLabelValues(string(ref.Entity), string(action)).Inc()
	a.notifyAuthor(ctx, ref, state, action, to, notes)
	return to, nil
}

func buildUpdate(action Action, to string, actor Actor, notes string) Update {
	now := time.Now()
	switch action {
	case ActionStartReview:
		return Update{NewStatus: to, VerificationStatus: VerificationPending, VerifiedBy: &actor.UserID}
	case ActionApprove:
		return Update{NewStatus: to, VerificationStatus: VerificationVerified, VerifiedBy: &actor.UserID, VerifiedAt: &now, ReviewNotes: &notes}
	case ActionReject:
		return Update{NewStatus: to, VerificationStatus: VerificationRejected, VerifiedBy: &actor.UserID, VerifiedAt: &now, ReviewNotes: &notes}
	default: // submit, resubmit
		empty := ""
		return Update{NewStatus: to, VerificationStatus: VerificationPending, ClearVerifier: true, ReviewNotes: &empty}
	}
}

// notifyAuthor fires the best-effort author notification. Failures are logged
// and never propagate; the transition is already committed.
func (a *Arbiter) notifyAuthor(ctx context.Context, ref RecordRef, state RecordState, action Action, newStatus, notes string) {
	if action == ActionSubmit || action == ActionResubmit {
		return
	}
	body := fmt.Sprintf("Status pengajuan Anda kini %q.", newStatus)
	if notes != "" {
		body += "\nCatatan peninjau: " + notes
	}
	n := notify.Notification{
		RecipientEmail: state.AuthorEmail,
		RecipientName:  state.AuthorName,
		Subject:        fmt.Sprintf("Pembaruan status %s %s", ref.Entity, ref.ID),
		Body:           body,
	}
	if err := a.notifier.Notify(ctx, n); err != nil {
		log.Printf("[review] notification for %s/%s failed: %v", ref.Entity, ref.ID, err)
	}
}
