package database

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/utils"
)

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Motorcycle{},
		&models.Order{},
		&models.PaymentInstruction{},
		&models.PaymentProof{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
