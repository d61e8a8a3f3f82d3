package analysis

import (
	"testing"
	"time"

	"gridwatch/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesOf(zone models.ZoneCode, values ...float64) models.MPriceSeries {
	points := make([]models.MTimePoint, len(values))
	for i, v := range values {
		points[i] = models.MTimePoint{Timestamp: day.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return models.NewPriceSeries(zone, day, day.Add(24*time.Hour), points)
}

func TestCheapestHours_StableOrder(t *testing.T) {
	s := seriesOf(models.ZoneSE3, 30, 10, 20, 10, 5)

	got := CheapestHours(s, 3)
	assert.Equal(t, []models.MRankedHour{
		{Time: "04:00", Price: 5},
		{Time: "01:00", Price: 10},
		{Time: "03:00", Price: 10},
	}, got)
}

func TestCheapestHours_Bounds(t *testing.T) {
	s := seriesOf(models.ZoneSE3, 3, 1, 2)

	assert.Len(t, CheapestHours(s, 10), 3)
	assert.Empty(t, CheapestHours(s, 0))
	assert.Empty(t, CheapestHours(models.MPriceSeries{}, 5))

	// input order is untouched
	assert.Equal(t, []float64{3, 1, 2}, s.Values())
}

func TestCheckAlerts(t *testing.T) {
	alerts := CheckAlerts(seriesOf(models.ZoneSE3, 50, 120, 110), models.ZoneSE3, 100)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertHighPrice, alerts[0].Level)
	assert.Equal(t, 120.0, alerts[0].Value)
	assert.Equal(t, "High price alert in SE3: 120.00 €/MWh", alerts[0].Message)
	assert.Equal(t, models.ZoneSE3, alerts[0].Zone)

	assert.Empty(t, CheckAlerts(seriesOf(models.ZoneSE3, 90), models.ZoneSE3, 100))
	assert.Empty(t, CheckAlerts(seriesOf(models.ZoneSE3, 100), models.ZoneSE3, 100))
	assert.Empty(t, CheckAlerts(models.MPriceSeries{}, models.ZoneSE3, 100))
}

func TestCheckAlerts_NegativeThreshold(t *testing.T) {
	alerts := CheckAlerts(seriesOf(models.ZoneSE1, -20, -5), models.ZoneSE1, -10)
	require.Len(t, alerts, 1)
	assert.Equal(t, -5.0, alerts[0].Value)
}

func TestRepresentativePrice(t *testing.T) {
	p, ok := RepresentativePrice(seriesOf(models.ZoneSE2, 10, 20, 31))
	assert.True(t, ok)
	assert.Equal(t, 20.33, p)

	_, ok = RepresentativePrice(models.MPriceSeries{})
	assert.False(t, ok)
}

func TestSeriesStats(t *testing.T) {
	st := SeriesStats(seriesOf(models.ZoneSE2, 2, 4, 4, 4, 5, 5, 7, 9))
	assert.Equal(t, models.MSeriesStats{Count: 8, Min: 2, Max: 9, Mean: 5, Std: 2}, st)
}

func TestDetectAnomalies(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = 50
	}
	values[5] = 400
	values[10] = -3

	got := DetectAnomalies(seriesOf(models.ZoneSE4, values...), 2.5)
	require.Len(t, got, 2)
	assert.Equal(t, models.AnomalySpikeHigh, got[0].Kind)
	assert.Equal(t, 400.0, got[0].Value)
	assert.Equal(t, models.AnomalyNegativePrice, got[1].Kind)
	assert.True(t, got[1].Timestamp.Equal(day.Add(10*time.Hour)))
}

func TestDetectAnomalies_FlatSeries(t *testing.T) {
	assert.Empty(t, DetectAnomalies(seriesOf(models.ZoneSE4, 40, 40, 40), 2.5))
	assert.Empty(t, DetectAnomalies(models.MPriceSeries{}, 2.5))
}

func TestAnalyzer_Evaluate(t *testing.T) {
	cfg := &models.MConfig{Analysis: models.MAnalysisConfig{PriceThreshold: 80, CheapestHours: 2}}
	a := NewAnalyzer(cfg, nil)
	assert.Equal(t, DefaultZScoreLimit, a.ZScoreLimit)

	var report models.MZoneReport
	a.Evaluate(seriesOf(models.ZoneSE3, 90, 10, 20), &report)

	assert.Len(t, report.CheapestHours, 2)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, 90.0, report.Alerts[0].Value)
	assert.Equal(t, 40.0, report.Price)
	assert.Equal(t, 3, report.Stats.Count)
}
