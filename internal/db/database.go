// Package db owns the gorm connection and schema migration.
package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/models"
)

// InitDB connects to postgres and migrates the audit schema.
func InitDB(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := gdb.AutoMigrate(
		&models.ConsumedAuthorization{},
		&models.DepositRecord{},
		&models.WithdrawalRecord{},
	); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	log.Info("database connected and schema migrated")
	return gdb, nil
}
