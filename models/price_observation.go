package models

import "time"

// PriceObservation is one immutable history entry for a tracked item.
// Max fields are nil for an exact price and set for a range. Units are
// counted in the base lock denomination (wls).
//
// Observations are append-only: corrections are new observations, never
// updates, and the only delete path is the cascade from their pairing.
type PriceObservation struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TrackedItemID uint      `json:"tracked_item_id" gorm:"not null;index"`
	MinCount      int       `json:"min_count" gorm:"not null"`
	MaxCount      *int      `json:"max_count"`
	MinUnits      int       `json:"min_units" gorm:"not null"`
	MaxUnits      *int      `json:"max_units"`
	CreatedAt     time.Time `json:"created_at"`
}
