package interfaces

import (
	"context"
	"time"

	"gridwatch/src/models"
)

// -----------------------------------------------------------------------------
// IPriceSource fetches day-ahead price series from a market-data provider.
// -----------------------------------------------------------------------------

type IPriceSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchDayAheadPrices always returns a usable series for zone, falling
	// back to synthetic data when the provider cannot be reached.
	FetchDayAheadPrices(ctx context.Context, zone models.ZoneCode, referenceDate time.Time) models.MPriceSeries
}
