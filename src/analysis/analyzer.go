package analysis

import (
	"fmt"
	"sort"

	"gridwatch/src/analysis/core"
	"gridwatch/src/logger"
	"gridwatch/src/models"
)

const (
	DefaultCheapestHours  = 5
	DefaultPriceThreshold = 100.0
	DefaultZScoreLimit    = 2.5

	hourLayout = "15:04"
)

// -----------------------------------------------------------------------------

// CheapestHours returns the n lowest-priced points, cheapest first. Equal
// prices keep their chronological order.
func CheapestHours(series models.MPriceSeries, n int) []models.MRankedHour {
	if n <= 0 || series.Len() == 0 {
		return []models.MRankedHour{}
	}

	sorted := make([]models.MPricePoint, series.Len())
	copy(sorted, series.Points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	if n > len(sorted) {
		n = len(sorted)
	}

	ranked := make([]models.MRankedHour, n)
	for i, p := range sorted[:n] {
		ranked[i] = models.MRankedHour{
			Time:  p.Timestamp.UTC().Format(hourLayout),
			Price: p.Value,
		}
	}
	return ranked
}

// -----------------------------------------------------------------------------

// CheckAlerts yields at most one HIGH_PRICE candidate carrying the highest
// value strictly above threshold. Nothing is persisted.
func CheckAlerts(series models.MPriceSeries, zone models.ZoneCode, threshold float64) []models.MAlert {
	breached := false
	maxValue := 0.0
	for _, p := range series.Points {
		if p.Value > threshold && (!breached || p.Value > maxValue) {
			breached = true
			maxValue = p.Value
		}
	}

	if !breached {
		return []models.MAlert{}
	}

	return []models.MAlert{{
		Zone:    zone,
		Level:   models.AlertHighPrice,
		Message: fmt.Sprintf("High price alert in %s: %.2f €/MWh", zone, maxValue),
		Value:   maxValue,
	}}
}

// -----------------------------------------------------------------------------

// RepresentativePrice is the mean of the series, reported per zone to the
// snapshot consumers.
func RepresentativePrice(series models.MPriceSeries) (float64, bool) {
	if series.Len() == 0 {
		return 0, false
	}
	mean, _ := core.CalculateMeanStd(series.Values())
	return core.Round2(mean), true
}

// -----------------------------------------------------------------------------

func SeriesStats(series models.MPriceSeries) models.MSeriesStats {
	values := series.Values()
	mean, std := core.CalculateMeanStd(values)
	lo, hi := core.CalculateMinMax(values)
	return models.MSeriesStats{
		Count: len(values),
		Min:   lo,
		Max:   hi,
		Mean:  core.Round2(mean),
		Std:   core.Round2(std),
	}
}

// -----------------------------------------------------------------------------

// DetectAnomalies flags negative prices and points whose |z| exceeds zLimit.
// A negative price is reported once, as NEGATIVE_PRICE.
func DetectAnomalies(series models.MPriceSeries, zLimit float64) []models.MAnomaly {
	anomalies := []models.MAnomaly{}
	if series.Len() == 0 {
		return anomalies
	}

	mean, std := core.CalculateMeanStd(series.Values())
	for _, p := range series.Points {
		z := core.CalculateZScore(p.Value, mean, std)

		if p.Value < 0 {
			anomalies = append(anomalies, models.MAnomaly{
				Timestamp: p.Timestamp, Value: p.Value, Kind: models.AnomalyNegativePrice, ZScore: core.Round2(z),
			})
			continue
		}

		if z > zLimit || z < -zLimit {
			kind := models.AnomalySpikeHigh
			if z < 0 {
				kind = models.AnomalySpikeLow
			}
			anomalies = append(anomalies, models.MAnomaly{
				Timestamp: p.Timestamp, Value: p.Value, Kind: kind, ZScore: core.Round2(z),
			})
		}
	}
	return anomalies
}

// -----------------------------------------------------------------------------

// Analyzer applies the configured parameters to a zone's series.
type Analyzer struct {
	CheapestCount int
	Threshold     float64
	ZScoreLimit   float64
	Logger        *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalyzer(cfg *models.MConfig, log *logger.Logger) *Analyzer {
	a := &Analyzer{
		CheapestCount: DefaultCheapestHours,
		Threshold:     DefaultPriceThreshold,
		ZScoreLimit:   DefaultZScoreLimit,
		Logger:        log,
	}
	if cfg != nil {
		if cfg.Analysis.CheapestHours > 0 {
			a.CheapestCount = cfg.Analysis.CheapestHours
		}
		if cfg.Analysis.PriceThreshold != 0 {
			a.Threshold = cfg.Analysis.PriceThreshold
		}
		if cfg.Analysis.ZScoreLimit > 0 {
			a.ZScoreLimit = cfg.Analysis.ZScoreLimit
		}
	}
	return a
}

// -----------------------------------------------------------------------------

// Evaluate fills the derived-signal fields of report from series.
func (a *Analyzer) Evaluate(series models.MPriceSeries, report *models.MZoneReport) {
	report.CheapestHours = CheapestHours(series, a.CheapestCount)
	report.Alerts = CheckAlerts(series, series.Zone, a.Threshold)
	report.Stats = SeriesStats(series)
	report.Anomalies = DetectAnomalies(series, a.ZScoreLimit)
	report.Price, _ = RepresentativePrice(series)

	if n := len(report.Anomalies); n > 0 && a.Logger != nil {
		a.Logger.Debug("%s: %d anomalies detected", series.Zone, n)
	}
}
