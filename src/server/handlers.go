package server

import (
	"net/http"
	"strconv"
	"time"

	"gridwatch/src/analysis"
	"gridwatch/src/models"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout        = "2006-01-02"
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	runID := s.latestState.RunID
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": timestamp,
		"run_id":        runID,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"zones":                   s.Config.DataSource.Zones,
		"update_interval_seconds": s.Config.DataSource.UpdateIntervalSeconds,
		"price_threshold":         s.Config.Analysis.PriceThreshold,
		"cheapest_hours":          s.Config.Analysis.CheapestHours,
		"zscore_limit":            s.Config.Analysis.ZScoreLimit,
		"db_type":                 s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getPrices(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"run_id":      s.latestState.RunID,
		"timestamp":   s.latestState.Timestamp,
		"zone_prices": s.latestState.ZonePrices,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getZonePrices(c *gin.Context) {
	zone, day, ok := s.zoneAndDay(c)
	if !ok {
		return
	}

	series, ok := s.loadSeries(c, zone, day)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"zone":   zone,
		"date":   day.Format(dateLayout),
		"points": series.Points,
		"stats":  analysis.SeriesStats(series),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getZoneCheapest(c *gin.Context) {
	zone, day, ok := s.zoneAndDay(c)
	if !ok {
		return
	}

	n := s.Config.Analysis.CheapestHours
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = v
	}

	series, ok := s.loadSeries(c, zone, day)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"zone":     zone,
		"date":     day.Format(dateLayout),
		"cheapest": analysis.CheapestHours(series, n),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getAlerts(c *gin.Context) {
	limit := defaultAlertLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(v, maxAlertLimit)
	}

	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	alerts, err := s.Store.RecentAlerts(limit)
	if err != nil {
		s.Logger.Error("Failed to load alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alerts"})
		return
	}
	if alerts == nil {
		alerts = []models.MAlert{}
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// -----------------------------------------------------------------------------
// Request helpers
// -----------------------------------------------------------------------------

// zoneAndDay resolves the :zone parameter and the optional ?date= query. The
// day defaults to the window of the latest run, or today.
func (s *FastAPIServer) zoneAndDay(c *gin.Context) (models.ZoneCode, time.Time, bool) {
	zone, err := models.ParseZoneCode(c.Param("zone"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", time.Time{}, false
	}

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return "", time.Time{}, false
		}
		return zone, day.UTC(), true
	}

	s.stateMutex.RLock()
	window := s.latestWindow
	s.stateMutex.RUnlock()
	if window.IsZero() {
		window = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return zone, window, true
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) loadSeries(c *gin.Context, zone models.ZoneCode, day time.Time) (models.MPriceSeries, bool) {
	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return models.MPriceSeries{}, false
	}

	end := day.Add(24 * time.Hour)
	points, err := s.Store.GetPrices(zone, day, end)
	if err != nil {
		s.Logger.Error("Failed to load prices for %s: %v", zone, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prices"})
		return models.MPriceSeries{}, false
	}
	if points == nil {
		points = []models.MPricePoint{}
	}

	return models.MPriceSeries{Zone: zone, Start: day, End: end, Points: points}, true
}
