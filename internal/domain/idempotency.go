package domain

import "time"

// Idempotency records the outcome of a create request keyed by
// (user_id, farm_id, key). A retry with the same key is answered with the
// originally created record instead of inserting a second one.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_farm_key,priority:1"`
	FarmID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_farm_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_farm_key,priority:3"`
	Kind      string    `gorm:"type:TEXT NOT NULL"`
	RecordID  string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
