package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pricebot/models"
)

// DB is the global database handle used by every package.
var DB *gorm.DB

// ConnectDatabase opens the sqlite database at path and migrates all
// models. Foreign keys are switched on so pairing deletes cascade into
// their observations.
func ConnectDatabase(path string) {
	var err error
	DB, err = gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	fmt.Println("✅ Database connected successfully!")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Row{},
		&models.RowAdmin{},
		&models.TrackedItem{},
		&models.PriceObservation{},
	)
	if err != nil {
		log.Fatalf("❌ Failed to migrate the database: %v\n", err)
	}
	fmt.Println("✅ Database migrated successfully!")
}
