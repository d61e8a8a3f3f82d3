package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/logger"
	"gridwatch/src/models"

	_ "github.com/lib/pq"
)

const defaultSchema = "gridwatch"

var postgresDialect = dialect{
	name: "postgres",
	pricesDDL: `
		CREATE TABLE IF NOT EXISTS %s (
			zone TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (zone, timestamp)
		)`,
	alertsDDL: `
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMP DEFAULT (NOW() AT TIME ZONE 'UTC'),
			zone TEXT,
			message TEXT,
			level TEXT
		)`,
	positional: true,
	encodeTime: func(t time.Time) any {
		return t.UTC()
	},
}

// -----------------------------------------------------------------------------

type PostgresDB struct {
	sqlStore
	Schema string
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg == nil {
		return nil, helpers.NewConfigurationError("postgres store requires a configuration", nil)
	}

	schema := strings.TrimSpace(cfg.Storage.DBSchema)
	if schema == "" {
		schema = defaultSchema
	}
	if strings.ContainsRune(schema, '"') {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("invalid schema name %q", schema), nil)
	}

	return &PostgresDB{
		sqlStore: sqlStore{
			Config:  cfg,
			Logger:  log,
			dialect: postgresDialect,
			prices:  fmt.Sprintf(`"%s".prices`, schema),
			alerts:  fmt.Sprintf(`"%s".alerts`, schema),
		},
		Schema: schema,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping postgres", err)
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError("create schema "+d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}
