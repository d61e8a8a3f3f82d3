package entsoe

import (
	"math"
	"math/rand/v2"
	"time"

	"gridwatch/src/models"
)

const (
	syntheticHours     = 24
	syntheticBasePrice = 45.0
	syntheticPeakScale = 1.5
	syntheticJitter    = 5.0
)

// JitterFunc returns a price offset in [-5, +5]. It must be safe for
// concurrent use.
type JitterFunc func() float64

// DefaultJitter draws from the shared math/rand/v2 source.
func DefaultJitter() float64 {
	return rand.Float64()*2*syntheticJitter - syntheticJitter
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isPeakHour covers the morning (07-09) and evening (17-19) demand peaks.
func isPeakHour(h int) bool {
	return (h >= 7 && h <= 9) || (h >= 17 && h <= 19)
}

// SyntheticSeries builds a plausible 24-hour curve for day so that analysis
// and storage keep working without a live market API.
func SyntheticSeries(zone models.ZoneCode, day time.Time, jitter JitterFunc) models.MPriceSeries {
	if jitter == nil {
		jitter = DefaultJitter
	}
	start := StartOfDay(day)

	points := make([]models.MPricePoint, 0, syntheticHours)
	for h := 0; h < syntheticHours; h++ {
		factor := 1.0
		if isPeakHour(h) {
			factor = syntheticPeakScale
		}
		offset := math.Max(-syntheticJitter, math.Min(syntheticJitter, jitter()))
		price := syntheticBasePrice*factor + offset

		points = append(points, models.MPricePoint{
			Zone:      zone,
			Timestamp: start.Add(time.Duration(h) * time.Hour),
			Value:     math.Round(price*100) / 100,
		})
	}

	return models.MPriceSeries{
		Zone:      zone,
		Start:     start,
		End:       start.Add(syntheticHours * time.Hour),
		Points:    points,
		Synthetic: true,
	}
}
