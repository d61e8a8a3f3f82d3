package entsoe

import (
	"context"
	"fmt"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/interfaces"
	"gridwatch/src/logger"
	"gridwatch/src/models"
)

const (
	DefaultBaseURL = "https://web-api.tp.entsoe.eu/api"

	documentDayAheadPrices = "A44"
	documentGeneration     = "A75"
	processDayAhead        = "A01"

	periodLayout = "200601021504"
)

// Client fetches market documents from the ENTSO-E Transparency API.
// It keeps no per-call state and is safe for concurrent use across zones.
type Client struct {
	baseURL string
	token   string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	jitter  JitterFunc
	now     func() time.Time
}

// -----------------------------------------------------------------------------

// NewClient validates the credential before any request can be made.
func NewClient(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) (*Client, error) {
	if cfg == nil || cfg.Entsoe.SecurityToken == "" {
		return nil, helpers.NewConfigurationError("ENTSO-E security token is missing (set ENTSOE_API_KEY)", nil)
	}
	if netMgr == nil {
		return nil, helpers.NewConfigurationError("network manager is required", nil)
	}

	baseURL := cfg.Entsoe.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewLogger(cfg, "EntsoeClient")
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Entsoe.SecurityToken,
		Network: netMgr,
		Logger:  log,
		jitter:  DefaultJitter,
		now:     time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (c *Client) Name() string {
	return "entsoe"
}

// -----------------------------------------------------------------------------

// FetchDayAheadPrices returns the day-ahead prices of zone for the UTC day of
// referenceDate (zero means today). It never fails: any transport, status or
// decoding problem is logged and answered with a synthetic series.
func (c *Client) FetchDayAheadPrices(ctx context.Context, zone models.ZoneCode, referenceDate time.Time) models.MPriceSeries {
	if referenceDate.IsZero() {
		referenceDate = c.now()
	}
	day := StartOfDay(referenceDate)

	series, err := c.fetchDayAhead(ctx, zone, day)
	if err != nil {
		c.Logger.Warning("Fetching day-ahead prices for %s failed (%v). Using synthetic data.", zone, err)
		return SyntheticSeries(zone, day, c.jitter)
	}

	c.Logger.Info("Fetched %d day-ahead prices for %s (%s)", series.Len(), zone, day.Format("2006-01-02"))
	return series
}

// -----------------------------------------------------------------------------

func (c *Client) fetchDayAhead(ctx context.Context, zone models.ZoneCode, day time.Time) (models.MPriceSeries, error) {
	eic, ok := zone.EIC()
	if !ok {
		return models.MPriceSeries{}, fmt.Errorf("unknown zone %q", zone)
	}

	end := day.Add(24 * time.Hour)
	params := c.windowParams(day, end)
	params["documentType"] = documentDayAheadPrices
	params["in_Domain"] = eic
	params["out_Domain"] = eic

	body, err := c.Network.Get(ctx, c.baseURL, params)
	if err != nil {
		return models.MPriceSeries{}, err
	}

	points, err := DecodeTimeSeries(body, FieldPriceAmount)
	if err != nil {
		return models.MPriceSeries{}, err
	}
	if len(points) == 0 {
		return models.MPriceSeries{}, helpers.NewDecodeError("document carries no price points", nil)
	}

	return models.NewPriceSeries(zone, day, end, points), nil
}

// -----------------------------------------------------------------------------

// FetchGenerationForecast returns the day-ahead aggregated generation
// forecast (MW) for zone. Unlike prices it reports failures to the caller.
func (c *Client) FetchGenerationForecast(ctx context.Context, zone models.ZoneCode, referenceDate time.Time) ([]models.MTimePoint, error) {
	eic, ok := zone.EIC()
	if !ok {
		return nil, fmt.Errorf("unknown zone %q", zone)
	}
	if referenceDate.IsZero() {
		referenceDate = c.now()
	}
	day := StartOfDay(referenceDate)

	params := c.windowParams(day, day.Add(24*time.Hour))
	params["documentType"] = documentGeneration
	params["processType"] = processDayAhead
	params["in_Domain"] = eic

	body, err := c.Network.Get(ctx, c.baseURL, params)
	if err != nil {
		return nil, fmt.Errorf("generation forecast %s: %w", zone, err)
	}

	points, err := DecodeTimeSeries(body, FieldQuantity)
	if err != nil {
		return nil, fmt.Errorf("generation forecast %s: %w", zone, err)
	}
	return points, nil
}

// -----------------------------------------------------------------------------

func (c *Client) windowParams(start, end time.Time) map[string]string {
	return map[string]string{
		"securityToken": c.token,
		"periodStart":   start.Format(periodLayout),
		"periodEnd":     end.Format(periodLayout),
	}
}
