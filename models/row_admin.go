package models

import "fmt"

// RowAdmin grants a user the right to edit prices in one row. A user can
// hold grants on any number of rows and a row can have any number of
// admins, so there is no uniqueness constraint here.
type RowAdmin struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	RowID  uint   `json:"row_id" gorm:"not null"`
	UserID string `json:"user_id" gorm:"not null;index"`
	Row    Row    `json:"row" gorm:"foreignKey:RowID"`
}

func rowFallbackLabel(id uint) string {
	return fmt.Sprintf("N/A (%d)", id)
}
