package interfaces

import (
	"time"

	"gridwatch/src/models"
)

// -----------------------------------------------------------------------------
// IPriceStore defines the contract for price and alert persistence.
// -----------------------------------------------------------------------------

type IPriceStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates missing tables.
	// Existing history is never dropped.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SavePrices inserts points keyed by (zone, timestamp). Keys already stored
	// keep their first value; only new keys are written. Returns the number of
	// inserted rows.
	SavePrices(zone models.ZoneCode, points []models.MPricePoint) (int, error)

	// -----------------------------------------------------------------------------

	// LogAlert appends one alert with a store-assigned id and creation time.
	LogAlert(zone models.ZoneCode, message string, level models.AlertLevel) (models.MAlert, error)

	// -----------------------------------------------------------------------------

	// GetPrices returns stored points for zone with from <= timestamp < to.
	GetPrices(zone models.ZoneCode, from, to time.Time) ([]models.MPricePoint, error)

	// -----------------------------------------------------------------------------

	// CountPrices returns the number of stored points for zone.
	CountPrices(zone models.ZoneCode) (int, error)

	// -----------------------------------------------------------------------------

	// RecentAlerts returns up to limit alerts, newest first.
	RecentAlerts(limit int) ([]models.MAlert, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes prices older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
