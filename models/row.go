package models

// Row is a named price list. Items and admins hang off it and are
// removed with it.
type Row struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	Name   string        `json:"name"`
	Items  []TrackedItem `json:"items" gorm:"foreignKey:RowID;constraint:OnDelete:CASCADE"`
	Admins []RowAdmin    `json:"admins" gorm:"foreignKey:RowID;constraint:OnDelete:CASCADE"`
}

// Label is the display name shown in selectors and listings. Rows
// created without a name fall back to "N/A (<id>)".
func (r Row) Label() string {
	if r.Name == "" {
		return rowFallbackLabel(r.ID)
	}
	return r.Name
}
