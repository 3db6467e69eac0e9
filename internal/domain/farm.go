// Package domain defines the persistence models for farms, herds, herd
// records and farm finances. These types are mapped with GORM and form the
// core data layer of the dairy backend.
package domain

import (
	"fmt"
	"time"
)

// FarmStatus is the publication state of a farm.
type FarmStatus string

const (
	FarmActive   FarmStatus = "active"
	FarmInactive FarmStatus = "inactive"
)

// Valid reports whether s is a known farm status.
func (s FarmStatus) Valid() bool {
	return s == FarmActive || s == FarmInactive
}

// Farm is a registered dairy farm. Farms start inactive and unverified;
// an operator activates and verifies them after review.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Name: unique display name.
//   - Slug: URL-safe unique key derived from Name once, at registration.
//     It is never recomputed, even when the farm is renamed.
//   - ManagerID: opaque reference to the managing user.
//   - Email / Phone: optional contact fields, validated by the service layer.
//   - Status / Verified: lifecycle flags, both indexed for listing.
type Farm struct {
	ID          string     `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string     `json:"name"        gorm:"type:varchar(100);not null;uniqueIndex:ux_farms_name"`
	Slug        string     `json:"slug"        gorm:"type:varchar(120);not null;uniqueIndex:ux_farms_slug"`
	ManagerID   string     `json:"manager_id"  gorm:"type:varchar(64);index"`
	Location    string     `json:"location"    gorm:"type:varchar(100)"`
	Description string     `json:"description" gorm:"type:text"`
	Slogan      string     `json:"slogan"      gorm:"type:varchar(255)"`
	Email       string     `json:"email"       gorm:"type:varchar(255)"`
	Phone       string     `json:"phone"       gorm:"type:varchar(20)"`
	Status      FarmStatus `json:"status"      gorm:"type:varchar(16);not null;default:'inactive';index"`
	Verified    bool       `json:"verified"    gorm:"not null;default:false;index"`
	CreatedAt   time.Time  `json:"created_at"  gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Farm.
func (Farm) TableName() string { return "farms" }

// Gender of a cow.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool { return g == Male || g == Female }

// CowStatus replaces a soft-delete flag with an explicit lifecycle state.
type CowStatus string

const (
	CowActive   CowStatus = "active"
	CowArchived CowStatus = "archived"
)

// Valid reports whether s is a known cow status.
func (s CowStatus) Valid() bool { return s == CowActive || s == CowArchived }

// Cow is a herd member belonging to exactly one farm. Identifier is issued
// from a sequence in the same transaction that inserts the row and never
// changes afterwards.
type Cow struct {
	ID          string     `json:"id"                      gorm:"type:char(36);primaryKey"`
	FarmID      string     `json:"farm_id"                 gorm:"type:char(36);not null;index:idx_farm_cows,priority:1"`
	NameOrTag   string     `json:"name_or_tag"             gorm:"type:varchar(100);not null"`
	Identifier  string     `json:"identifier"              gorm:"type:varchar(100);not null;uniqueIndex:ux_cows_identifier"`
	Breed       string     `json:"breed"                   gorm:"type:varchar(100)"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      Gender     `json:"gender"                  gorm:"type:varchar(10);not null;check:gender IN ('male','female')"`
	Status      CowStatus  `json:"status"                  gorm:"type:varchar(16);not null;default:'active';index"`
	CreatedAt   time.Time  `json:"created_at"              gorm:"index:idx_farm_cows,priority:2"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Farm is the owning farm. Cows are cascade-deleted with their farm.
	Farm Farm `json:"-" gorm:"foreignKey:FarmID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Cow.
func (Cow) TableName() string { return "cows" }

// IsFemale reports whether the cow can carry breeding, calving and milking records.
func (c *Cow) IsFemale() bool { return c != nil && c.Gender == Female }

// Age renders the cow's age at now as "N years, M months". It returns ""
// when the birth date is unknown.
func (c *Cow) Age(now time.Time) string {
	if c == nil || c.DateOfBirth == nil {
		return ""
	}
	days := int(now.Sub(*c.DateOfBirth).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return fmt.Sprintf("%d years, %d months", days/365, (days%365)/30)
}

// IdentifierSequence is a named counter used to issue record identifiers
// without a second write after insert.
type IdentifierSequence struct {
	Name    string `gorm:"type:varchar(32);primaryKey"`
	Counter int64  `gorm:"not null;default:0"`
}

// TableName returns the database table name for IdentifierSequence.
func (IdentifierSequence) TableName() string { return "identifier_sequences" }
