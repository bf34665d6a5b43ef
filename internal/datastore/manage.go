package datastore

import (
	"fmt"

	"gorm.io/gorm"
)

// performAutoMigration runs GORM auto-migration for all models and logs
// the outcome through the datastore service logger.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Species{}, &Occurrence{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		logger.Debug("Database connection initialized",
			"type", dbType,
			"connection", connectionInfo)
	}

	return nil
}
