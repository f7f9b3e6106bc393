// Package prices owns the price history: row/item pairings, the
// append-only observation ledger and the rendered price table.
package prices

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pricebot/database"
	"pricebot/models"
)

// GetOrCreateRowItem resolves the pairing between a row and a catalog
// item, creating it when it does not exist yet. The insert tolerates the
// unique (row, item) conflict and falls back to reading the existing
// record, so two racing callers both end up with the same pairing.
func GetOrCreateRowItem(rowID, itemID uint) (models.TrackedItem, error) {
	item := models.TrackedItem{RowID: rowID, ItemID: itemID}

	result := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if result.Error != nil {
		return models.TrackedItem{}, fmt.Errorf("create row item: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		err := database.DB.
			Where("row_id = ? AND item_id = ?", rowID, itemID).
			First(&item).Error
		if err != nil {
			return models.TrackedItem{}, fmt.Errorf("get existing row item: %w", err)
		}
	}

	return item, nil
}

// AddObservation appends one immutable price entry to a pairing's
// history. A single insert, so a failure never leaves partial state.
func AddObservation(obs models.PriceObservation) (models.PriceObservation, error) {
	if err := database.DB.Create(&obs).Error; err != nil {
		return models.PriceObservation{}, fmt.Errorf("create observation: %w", err)
	}
	return obs, nil
}

// LatestObservations returns up to n most recent observations for a
// pairing, newest first. Ties on the timestamp fall back to insertion
// order.
func LatestObservations(trackedItemID uint, n int) ([]models.PriceObservation, error) {
	var obs []models.PriceObservation
	err := database.DB.
		Where("tracked_item_id = ?", trackedItemID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&obs).Error
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	return obs, nil
}

// GetRow loads a row with its tracked items.
func GetRow(rowID uint) (models.Row, error) {
	var row models.Row
	err := database.DB.Preload("Items").First(&row, rowID).Error
	if err != nil {
		return models.Row{}, err
	}
	return row, nil
}

// CreateRow adds a new named row.
func CreateRow(name string) (models.Row, error) {
	row := models.Row{Name: name}
	if err := database.DB.Create(&row).Error; err != nil {
		return models.Row{}, fmt.Errorf("create row: %w", err)
	}
	return row, nil
}

// ListRows returns every row.
func ListRows() ([]models.Row, error) {
	var rows []models.Row
	if err := database.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return rows, nil
}

// RowAdmins returns the admin grants of one row.
func RowAdmins(rowID uint) ([]models.RowAdmin, error) {
	var admins []models.RowAdmin
	err := database.DB.Where("row_id = ?", rowID).Find(&admins).Error
	if err != nil {
		return nil, fmt.Errorf("list row admins: %w", err)
	}
	return admins, nil
}

// RowsAdministeredBy returns the grants of a user with the rows
// preloaded, i.e. the rows that user may submit prices to.
func RowsAdministeredBy(userID string) ([]models.RowAdmin, error) {
	var grants []models.RowAdmin
	err := database.DB.
		Preload("Row").
		Where("user_id = ?", userID).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("load admin rows: %w", err)
	}
	return grants, nil
}

// RemoveRowItem deletes the pairing of an item in a row together with
// its entire observation history. The history rows are deleted in the
// same transaction rather than trusting the driver's cascade pragma.
// Returns false when the pairing did not exist.
func RemoveRowItem(rowID, itemID uint) (bool, error) {
	var item models.TrackedItem
	err := database.DB.
		Where("row_id = ? AND item_id = ?", rowID, itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find row item: %w", err)
	}

	tx := database.DB.Begin()

	if err := tx.Where("tracked_item_id = ?", item.ID).
		Delete(&models.PriceObservation{}).Error; err != nil {
		tx.Rollback()
		return false, fmt.Errorf("delete observations: %w", err)
	}

	if err := tx.Delete(&models.TrackedItem{}, item.ID).Error; err != nil {
		tx.Rollback()
		return false, fmt.Errorf("delete row item: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}

	return true, nil
}
