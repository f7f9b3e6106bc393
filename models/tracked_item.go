package models

// TrackedItem pairs a catalog item with a row. The pair is unique; the
// same item re-added to the same row resolves to the existing record.
// Deleting a pairing takes its whole observation history with it.
type TrackedItem struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	RowID        uint               `json:"row_id" gorm:"not null;uniqueIndex:idx_row_item"`
	ItemID       uint               `json:"item_id" gorm:"not null;uniqueIndex:idx_row_item"`
	Observations []PriceObservation `json:"observations" gorm:"foreignKey:TrackedItemID;constraint:OnDelete:CASCADE"`
}
