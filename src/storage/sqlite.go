package storage

import (
	"database/sql"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/logger"
	"gridwatch/src/models"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	pricesDDL: `
		CREATE TABLE IF NOT EXISTS %s (
			zone TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			price REAL NOT NULL,
			PRIMARY KEY (zone, timestamp)
		)`,
	alertsDDL: `
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			zone TEXT,
			message TEXT,
			level TEXT
		)`,
	encodeTime: func(t time.Time) any {
		return t.UTC().Format(dbTimeLayout)
	},
}

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	sqlStore
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg == nil {
		return nil, helpers.NewConfigurationError("sqlite store requires a configuration", nil)
	}
	return &AsyncSQLiteDB{
		sqlStore: sqlStore{
			Config:  cfg,
			Logger:  log,
			dialect: sqliteDialect,
			prices:  "prices",
			alerts:  "alerts",
		},
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite "+dsn, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping sqlite "+dsn, err)
	}

	// One writer at a time; concurrent zone saves queue on the pool.
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		d.Logger.Warning("Failed to set busy timeout: %v", err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("SQLite store initialized (%s)", dsn)
	return nil
}
