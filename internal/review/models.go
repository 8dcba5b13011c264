package review

import (
	"time"
)

// Record statuses. The three reviewable entities deliberately do not share one
// vocabulary: facility surveys use "verified" as their in-review state where
// the other two use "under_review", and rejection terminality differs per
// entity. The per-entity transition tables in transition.go are the source of
// truth; do not unify them.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusVerified    = "verified"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	// StatusHistory marks an approved record superseded by a newer approved
	// record for the same household owner.
	StatusHistory = "history"
)

// Verification statuses shared by all three entities.
const (
	VerificationPending  = "Pending"
	VerificationVerified = "Verified"
	VerificationRejected = "Rejected"
)

type EntityType string

const (
	EntitySubmission         EntityType = "submission"
	EntityFacilitySurvey     EntityType = "facility_survey"
	EntityHousingDevelopment EntityType = "housing_development"
)

// ReviewFields is the shared reviewable shape embedded in each entity.
type ReviewFields struct {
	Status             string     `gorm:"size:24;default:'draft';index" json:"status"`
	VerificationStatus string     `gorm:"size:16;default:'Pending'" json:"verification_status"`
	VerifiedBy         *string    `gorm:"index" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	ReviewNotes        string     `gorm:"type:text" json:"review_notes"`
	CreatedBy          string     `gorm:"index;not null" json:"created_by"`

	ProvinceID string `gorm:"size:8;index" json:"province_id"`
	RegencyID  string `gorm:"size:8;index" json:"regency_id"`
	DistrictID string `gorm:"size:10;index" json:"district_id"`
	VillageID  string `gorm:"size:12;index" json:"village_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Submission is a housing-aid application tied to a household owner identity
// (NIK). At most one approved submission exists per owner; approving a new one
// supersedes the rest to history.
type Submission struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	OwnerNIK     string   `gorm:"size:20;index;not null" json:"owner_nik"`
	OwnerName    string   `gorm:"size:128" json:"owner_name"`
	OwnerEmail   string   `gorm:"size:128" json:"owner_email"`
	Address      string   `gorm:"type:text" json:"address"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	ReviewFields `gorm:"embedded"`
}

// FacilitySurvey records a public-facility (PSU) field survey.
type FacilitySurvey struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	FacilityName string   `gorm:"size:128" json:"facility_name"`
	FacilityType string   `gorm:"size:64" json:"facility_type"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	ReviewFields `gorm:"embedded"`
}

// HousingDevelopment tracks a housing construction/rehabilitation proposal.
type HousingDevelopment struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	ProjectName  string   `gorm:"size:128" json:"project_name"`
	UnitCount    int      `json:"unit_count"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	ReviewFields `gorm:"embedded"`
}

func (Submission) TableName() string         { return "submissions" }
func (FacilitySurvey) TableName() string     { return "facility_surveys" }
func (HousingDevelopment) TableName() string { return "housing_developments" }

// AuditLog is an immutable record of one review transition.
type AuditLog struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Entity     EntityType `gorm:"size:32;index;not null" json:"entity"`
	RecordID   string     `gorm:"index;not null" json:"record_id"`
	OldStatus  string     `gorm:"size:24" json:"old_status"`
	NewStatus  string     `gorm:"size:24" json:"new_status"`
	ReviewerID string     `gorm:"index" json:"reviewer_id"`
	Notes      string     `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (AuditLog) TableName() string { return "review_audit_logs" }
