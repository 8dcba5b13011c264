package review

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SiperumID/Siperum-Backend/internal/apperrors"
	"github.com/SiperumID/Siperum-Backend/internal/db"
)

var entityTables = map[EntityType]string{
	EntitySubmission:         "submissions",
	EntityFacilitySurvey:     "facility_surveys",
	EntityHousingDevelopment: "housing_developments",
}

// DBStore is the gorm-backed review store. All writes join the transaction
// carried in ctx when present, which is how the arbiter gets its
// read-check-write guard.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(d *gorm.DB) *DBStore {
	return &DBStore{db: d}
}

func (s *DBStore) handle(ctx context.Context) *gorm.DB {
	return db.Tx(ctx, s.db)
}

func (s *DBStore) Get(ctx context.Context, ref RecordRef) (RecordState, error) {
	table, ok := entityTables[ref.Entity]
	if !ok {
		return RecordState{}, apperrors.Validation(fmt.Sprintf("unknown entity type %q", ref.Entity))
	}
	var state RecordState
	query := s.handle(ctx).
		Table(table+" r").
		Select("r.id, r.status, r.verification_status, r.verified_by, r.created_by, u.email AS author_email, u.full_name AS author_name").
		Joins("LEFT JOIN users u ON u.user_id = r.created_by").
		Where("r.id = ?", ref.ID)
	if ref.Entity == EntitySubmission {
		query = query.Select("r.id, r.status, r.verification_status, r.verified_by, r.created_by, r.owner_nik, u.email AS author_email, u.full_name AS author_name")
	}
	err := query.Take(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RecordState{}, apperrors.NotFound(fmt.Sprintf("%s %s not found", ref.Entity, ref.ID))
	}
	if err != nil {
		return RecordState{}, apperrors.Database("load reviewable record", err)
	}
	return state, nil
}

func (s *DBStore) ApplyTransition(ctx context.Context, ref RecordRef, upd Update, guard Guard) (bool, error) {
	table, ok := entityTables[ref.Entity]
	if !ok {
		return false, apperrors.Validation(fmt.Sprintf("unknown entity type %q", ref.Entity))
	}

	values := map[string]interface{}{
		"status":              upd.NewStatus,
		"verification_status": upd.VerificationStatus,
		"updated_at":          gorm.Expr("NOW()"),
	}
	if upd.ClearVerifier {
		values["verified_by"] = nil
		values["verified_at"] = nil
	} else if upd.VerifiedBy != nil {
		values["verified_by"] = *upd.VerifiedBy
	}
	if upd.VerifiedAt != nil {
		values["verified_at"] = *upd.VerifiedAt
	}
	if upd.ReviewNotes != nil {
		values["review_notes"] = *upd.ReviewNotes
	}

	// The WHERE clause is the transactional re-check: status must still be in
	// the allowed set and, for review actions, the advisory reviewer lock must
	// still hold. Two concurrent reviewers can both pass the arbiter's
	// pre-check; only one of these updates will match a row.
	q := s.handle(ctx).Table(table).
		Where("id = ?", ref.ID).
		Where("status IN ?", guard.FromStatuses)
	if !guard.Bypass {
		q = q.Where("verified_by IS NULL OR verified_by = ?", guard.Reviewer)
	}
	res := q.Updates(values)
	if res.Error != nil {
		return false, apperrors.Database("apply review transition", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *DBStore) SupersedeApproved(ctx context.Context, ownerNIK, exceptID string) (int64, error) {
	res := s.handle(ctx).Table("submissions").
		Where("owner_nik = ? AND status = ? AND id <> ?", ownerNIK, StatusApproved, exceptID).
		Updates(map[string]interface{}{
			"status":     StatusHistory,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return 0, apperrors.Database("supersede approved submissions", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *DBStore) AppendAudit(ctx context.Context, entry AuditLog) error {
	if err := s.handle(ctx).Create(&entry).Error; err != nil {
		return apperrors.Database("append review audit log", err)
	}
	return nil
}
