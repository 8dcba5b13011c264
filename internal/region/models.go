package region

// The four administrative levels form a strict tree:
// Province -> Regency -> District -> Village. Rows are reference data imported
// from the national region code list; ids are the official short code strings.

type Province struct {
	ID   string   `gorm:"primaryKey;size:8" json:"id"`
	Code string   `gorm:"size:8;uniqueIndex" json:"code"`
	Name string   `gorm:"size:128;index" json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type Regency struct {
	ID         string   `gorm:"primaryKey;size:8" json:"id"`
	ProvinceID string   `gorm:"size:8;index;not null" json:"province_id"`
	Code       string   `gorm:"size:8;uniqueIndex" json:"code"`
	Name       string   `gorm:"size:128;index" json:"name"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`

	Province Province `gorm:"foreignKey:ProvinceID;constraint:OnDelete:CASCADE" json:"-"`
}

type District struct {
	ID        string   `gorm:"primaryKey;size:10" json:"id"`
	RegencyID string   `gorm:"size:8;index;not null" json:"regency_id"`
	Code      string   `gorm:"size:10;uniqueIndex" json:"code"`
	Name      string   `gorm:"size:128;index" json:"name"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`

	Regency Regency `gorm:"foreignKey:RegencyID;constraint:OnDelete:CASCADE" json:"-"`
}

type Village struct {
	ID         string   `gorm:"primaryKey;size:12" json:"id"`
	DistrictID string   `gorm:"size:10;index;not null" json:"district_id"`
	Code       string   `gorm:"size:12;uniqueIndex" json:"code"`
	Name       string   `gorm:"size:128;index" json:"name"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`

	District District `gorm:"foreignKey:DistrictID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Province) TableName() string { return "provinces" }
func (Regency) TableName() string  { return "regencies" }
func (District) TableName() string { return "districts" }
func (Village) TableName() string  { return "villages" }

// Level names one of the four administrative tiers (plus citizen for users
// with no jurisdiction at all).
type Level string

const (
	LevelProvince Level = "province"
	LevelRegency  Level = "regency"
	LevelDistrict Level = "district"
	LevelVillage  Level = "village"
)

// Coarser returns the next level up, or "" for province.
func (l Level) Coarser() Level {
	switch l {
	case LevelVillage:
		return LevelDistrict
	case LevelDistrict:
		return LevelRegency
	case LevelRegency:
		return LevelProvince
	default:
		return ""
	}
}

// Jurisdiction tags a record or user with up to four region ids. Coarser ids
// may be present without the finer ones; the reverse never happens for data
// written by this service.
type Jurisdiction struct {
	ProvinceID string `json:"province_id,omitempty"`
	RegencyID  string `json:"regency_id,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
	VillageID  string `json:"village_id,omitempty"`
}

// Level returns the finest tier that is set, or "" when empty.
func (j Jurisdiction) Level() Level {
	switch {
	case j.VillageID != "":
		return LevelVillage
	case j.DistrictID != "":
		return LevelDistrict
	case j.RegencyID != "":
		return LevelRegency
	case j.ProvinceID != "":
		return LevelProvince
	default:
		return ""
	}
}

// IDAt returns the id the jurisdiction carries at the given level.
func (j Jurisdiction) IDAt(l Level) string {
	switch l {
	case LevelProvince:
		return j.ProvinceID
	case LevelRegency:
		return j.RegencyID
	case LevelDistrict:
		return j.DistrictID
	case LevelVillage:
		return j.VillageID
	}
	return ""
}

func (j Jurisdiction) IsZero() bool { return j.Level() == "" }
