package domain

import "time"

// The setters below let the repository stamp identity and creation time on
// any herd or finance row through a single interface.

func (r *MilkingSession) SetID(id string) { r.ID = id }
func (r *MilkingSession) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *CowMass) SetID(id string) { r.ID = id }
func (r *CowMass) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *HealthRecord) SetID(id string) { r.ID = id }
func (r *HealthRecord) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *BreedingRecord) SetID(id string) { r.ID = id }
func (r *BreedingRecord) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *CalvingRecord) SetID(id string) { r.ID = id }
func (r *CalvingRecord) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *InventoryItem) SetID(id string) { r.ID = id }
func (r *InventoryItem) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *Expense) SetID(id string) { r.ID = id }
func (r *Expense) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *Revenue) SetID(id string) { r.ID = id }
func (r *Revenue) SetCreatedAt(t time.Time) { r.CreatedAt = t }
func (r *MilkSale) SetID(id string) { r.ID = id }
func (r *MilkSale) SetCreatedAt(t time.Time) { r.CreatedAt = t }

// GetID returns the primary key. Handlers use it to remember which row an
// idempotent request produced.

func (r *Cow) GetID() string { return r.ID }
func (r *MilkingSession) GetID() string { return r.ID }
func (r *CowMass) GetID() string { return r.ID }
func (r *HealthRecord) GetID() string { return r.ID }
func (r *BreedingRecord) GetID() string { return r.ID }
func (r *CalvingRecord) GetID() string { return r.ID }
func (r *InventoryItem) GetID() string { return r.ID }
func (r *Expense) GetID() string { return r.ID }
func (r *Revenue) GetID() string { return r.ID }
func (r *MilkSale) GetID() string { return r.ID }
