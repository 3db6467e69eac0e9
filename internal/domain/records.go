package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BreedingMethod enumerates how a cow was bred.
type BreedingMethod string

const (
	BreedingAI      BreedingMethod = "AI"
	BreedingNatural BreedingMethod = "Natural"
)

// Valid reports whether m is a known breeding method.
func (m BreedingMethod) Valid() bool { return m == BreedingAI || m == BreedingNatural }

// MilkingSession records the yield of one milking. A cow may be milked
// several times a day; each milking is its own row.
type MilkingSession struct {
	ID        string          `json:"id"        gorm:"type:char(36);primaryKey"`
	CowID     string          `json:"cow_id"    gorm:"type:char(36);not null;index:idx_cow_milkings,priority:1"`
	Yield     decimal.Decimal `json:"yield"     gorm:"type:decimal(8,2);not null"`
	MilkedAt  time.Time       `json:"milked_at" gorm:"not null;index:idx_cow_milkings,priority:2;index"`
	CreatedAt time.Time       `json:"created_at"`

	Cow Cow `json:"-" gorm:"foreignKey:CowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MilkingSession.
func (MilkingSession) TableName() string { return "milking_sessions" }

// CowMass is a single weight measurement in kilograms.
type CowMass struct {
	ID         string          `json:"id"          gorm:"type:char(36);primaryKey"`
	CowID      string          `json:"cow_id"      gorm:"type:char(36);not null;index"`
	Mass       decimal.Decimal `json:"mass"        gorm:"type:decimal(8,2);not null"`
	MeasuredOn time.Time       `json:"measured_on" gorm:"not null"`
	CreatedAt  time.Time       `json:"created_at"`

	Cow Cow `json:"-" gorm:"foreignKey:CowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CowMass.
func (CowMass) TableName() string { return "cow_masses" }

// HealthRecord captures a treatment administered to a cow.
type HealthRecord struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	CowID         string    `json:"cow_id"         gorm:"type:char(36);not null;index"`
	HealthIssue   string    `json:"health_issue"   gorm:"type:varchar(255);not null"`
	Treatment     string    `json:"treatment"      gorm:"type:varchar(255);not null"`
	TreatmentDate time.Time `json:"treatment_date" gorm:"not null"`
	Notes         string    `json:"notes"          gorm:"type:text"`
	VetName       string    `json:"vet_name"       gorm:"type:varchar(100)"`
	VetCompany    string    `json:"vet_company"    gorm:"type:varchar(100)"`
	CreatedAt     time.Time `json:"created_at"`

	Cow Cow `json:"-" gorm:"foreignKey:CowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for HealthRecord.
func (HealthRecord) TableName() string { return "health_records" }

// BreedingRecord documents a mating or insemination. Only female cows
// may carry one.
type BreedingRecord struct {
	ID                  string         `json:"id"                              gorm:"type:char(36);primaryKey"`
	CowID               string         `json:"cow_id"                          gorm:"type:char(36);not null;index"`
	Method              BreedingMethod `json:"method"                          gorm:"type:varchar(16);not null"`
	BullName            string         `json:"bull_name,omitempty"             gorm:"type:varchar(100)"`
	BullCode            string         `json:"bull_code,omitempty"             gorm:"type:varchar(100)"`
	ExpectedCalvingDate *time.Time     `json:"expected_calving_date,omitempty"`
	RepeatBreedingDate  *time.Time     `json:"repeat_breeding_date,omitempty"`
	LastCalvingDate     *time.Time     `json:"last_calving_date,omitempty"`
	NumberOfCalvings    *int           `json:"number_of_calvings,omitempty"`
	InseminatorName     string         `json:"inseminator_name,omitempty"      gorm:"type:varchar(100)"`
	CreatedAt           time.Time      `json:"created_at"`

	Cow Cow `json:"-" gorm:"foreignKey:CowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for BreedingRecord.
func (BreedingRecord) TableName() string { return "breeding_records" }

// CalvingRecord documents a birth.
type CalvingRecord struct {
	ID              string    `json:"id"                         gorm:"type:char(36);primaryKey"`
	CowID           string    `json:"cow_id"                     gorm:"type:char(36);not null;index"`
	CalvingDate     time.Time `json:"calving_date"               gorm:"not null"`
	CalfDetails     string    `json:"calf_details"               gorm:"type:text;not null"`
	BirthingDetails string    `json:"birthing_details,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`

	Cow Cow `json:"-" gorm:"foreignKey:CowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CalvingRecord.
func (CalvingRecord) TableName() string { return "calving_records" }
