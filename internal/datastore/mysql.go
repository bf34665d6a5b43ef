package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	mc := &settings.Database.MySQL
	if mc.Host == "" || mc.Port == "" || mc.Database == "" || mc.Username == "" {
		return fmt.Errorf("mysql configuration is incomplete")
	}
	return nil
}

// Open sets up the MySQL database connection and runs migrations.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	mc := &store.Settings.Database.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		mc.Username, mc.Password, mc.Host, mc.Port, mc.Database)

	level := gormlogger.Warn
	if store.Settings.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newGormLogger(level)})
	if err != nil {
		logger.Error("Failed to open MySQL database",
			"host", mc.Host,
			"port", mc.Port,
			"database", mc.Database,
			"error", err)
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", mc.Host+":"+mc.Port)
}

// Close closes the underlying MySQL connection.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		logger.Error("Database connection is not initialized")
		return fmt.Errorf("database connection is not initialized")
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		logger.Error("Failed to retrieve generic DB object", "error", err)
		return err
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close MySQL database", "error", err)
		return err
	}

	return nil
}
