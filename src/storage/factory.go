package storage

import (
	"fmt"
	"strings"

	"gridwatch/src/helpers"
	"gridwatch/src/interfaces"
	"gridwatch/src/logger"
	"gridwatch/src/models"
)

// NewStore returns the backend named by storage.db_type. It is not initialized.
func NewStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IPriceStore, error) {
	switch strings.ToLower(cfg.Storage.DBType) {
	case "", "sqlite":
		db, err := NewAsyncSQLiteDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres", "postgresql":
		db, err := NewPostgresDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unsupported db_type %q", cfg.Storage.DBType), nil)
	}
}
