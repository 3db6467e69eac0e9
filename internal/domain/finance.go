package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is stock held by a farm (feed, equipment, medicine).
type InventoryItem struct {
	ID          string          `json:"id"          gorm:"type:char(36);primaryKey"`
	FarmID      string          `json:"farm_id"     gorm:"type:char(36);not null;index"`
	ItemName    string          `json:"item_name"   gorm:"type:varchar(100);not null"`
	Quantity    int             `json:"quantity"    gorm:"not null;check:quantity >= 0"`
	UnitValue   decimal.Decimal `json:"unit_value"  gorm:"type:decimal(10,2);not null"`
	Description string          `json:"description" gorm:"type:text"`
	AcquiredOn  time.Time       `json:"acquired_on" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`

	Farm Farm `json:"-" gorm:"foreignKey:FarmID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for InventoryItem.
func (InventoryItem) TableName() string { return "inventory_items" }

// Expense is money spent by a farm.
type Expense struct {
	ID          string          `json:"id"          gorm:"type:char(36);primaryKey"`
	FarmID      string          `json:"farm_id"     gorm:"type:char(36);not null;index:idx_farm_expenses,priority:1"`
	Name        string          `json:"name"        gorm:"type:varchar(100);not null"`
	Description string          `json:"description" gorm:"type:varchar(255)"`
	Cost        decimal.Decimal `json:"cost"        gorm:"type:decimal(10,2);not null"`
	Date        time.Time       `json:"date"        gorm:"not null;index:idx_farm_expenses,priority:2"`
	Category    string          `json:"category"    gorm:"type:varchar(100);index"`
	CreatedAt   time.Time       `json:"created_at"`

	Farm Farm `json:"-" gorm:"foreignKey:FarmID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Expense.
func (Expense) TableName() string { return "expenses" }

// Revenue is money earned by a farm outside of recorded milk sales.
type Revenue struct {
	ID          string          `json:"id"          gorm:"type:char(36);primaryKey"`
	FarmID      string          `json:"farm_id"     gorm:"type:char(36);not null;index:idx_farm_revenue,priority:1"`
	Name        string          `json:"name"        gorm:"type:varchar(100);not null"`
	Description string          `json:"description" gorm:"type:varchar(255)"`
	Amount      decimal.Decimal `json:"amount"      gorm:"type:decimal(10,2);not null"`
	Date        time.Time       `json:"date"        gorm:"not null;index:idx_farm_revenue,priority:2"`
	CreatedAt   time.Time       `json:"created_at"`

	Farm Farm `json:"-" gorm:"foreignKey:FarmID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Revenue.
func (Revenue) TableName() string { return "revenue" }

// MilkSale is a quantity of milk sold to a customer. Sales are tied to a
// farm and a point in time, never to an individual cow.
type MilkSale struct {
	ID        string           `json:"id"                   gorm:"type:char(36);primaryKey"`
	FarmID    string           `json:"farm_id"              gorm:"type:char(36);not null;index:idx_farm_sales,priority:1"`
	Customer  string           `json:"customer"             gorm:"type:varchar(100);not null"`
	Quantity  decimal.Decimal  `json:"quantity"             gorm:"type:decimal(8,2);not null"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" gorm:"type:decimal(10,2)"`
	SoldAt    time.Time        `json:"sold_at"              gorm:"not null;index:idx_farm_sales,priority:2"`
	CreatedAt time.Time        `json:"created_at"`

	Farm Farm `json:"-" gorm:"foreignKey:FarmID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MilkSale.
func (MilkSale) TableName() string { return "milk_sales" }

// DailySnapshot is the persisted milk reconciliation of one farm for one
// calendar day, written by the nightly job.
type DailySnapshot struct {
	ID        string          `json:"id"         gorm:"type:char(36);primaryKey"`
	FarmID    string          `json:"farm_id"    gorm:"type:char(36);not null;uniqueIndex:ux_snapshot_farm_day,priority:1"`
	Day       string          `json:"day"        gorm:"type:char(10);not null;uniqueIndex:ux_snapshot_farm_day,priority:2"`
	Produced  decimal.Decimal `json:"produced"   gorm:"type:decimal(12,2);not null"`
	Sold      decimal.Decimal `json:"sold"       gorm:"type:decimal(12,2);not null"`
	Remaining decimal.Decimal `json:"remaining"  gorm:"type:decimal(12,2);not null"`
	CowCount  int             `json:"cow_count"  gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName returns the database table name for DailySnapshot.
func (DailySnapshot) TableName() string { return "daily_snapshots" }
