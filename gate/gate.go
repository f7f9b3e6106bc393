// Package gate decides who may do what: the owner list from the
// environment, the stored admin flag, and per-row admin grants.
package gate

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pricebot/database"
	"pricebot/models"
)

var owners []string

// Configure sets the global owner ids. Owners bypass every other check.
func Configure(ownerIDs []string) {
	owners = ownerIDs
}

// IsOwner reports whether the user is on the owner list.
func IsOwner(userID string) bool {
	for _, id := range owners {
		if id == userID {
			return true
		}
	}
	return false
}

// GetOrCreateUser returns the stored user record, creating an empty one
// on first contact.
func GetOrCreateUser(userID string) (models.User, error) {
	var user models.User
	err := database.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{ID: userID}
		if err := database.DB.Create(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// IsAdmin reports whether the user may run admin-only commands: owners
// always, everyone else by their stored admin flag.
func IsAdmin(userID string) bool {
	if IsOwner(userID) {
		return true
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.IsAdmin
}

// CanManageRow reports whether the user may mutate a row's prices: the
// owner override, or an existing admin grant on that row. A storage
// failure is an error, not a denial.
func CanManageRow(userID string, rowID uint) (bool, error) {
	if IsOwner(userID) {
		return true, nil
	}

	var count int64
	err := database.DB.Model(&models.RowAdmin{}).
		Where("row_id = ? AND user_id = ?", rowID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check row admin grant: %w", err)
	}
	return count > 0, nil
}
