package models

import "time"

// MPricePoint is one cleared day-ahead price for a zone and interval start.
// Value is in EUR/MWh and may be negative.
type MPricePoint struct {
	Zone      ZoneCode  `json:"zone"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MTimePoint is a decoded (timestamp, value) pair not yet attributed to a zone.
type MTimePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MPriceSeries is the ordered set of points for one zone and one request window.
type MPriceSeries struct {
	Zone      ZoneCode      `json:"zone"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Points    []MPricePoint `json:"points"`
	Synthetic bool          `json:"synthetic"`
}

// Len returns the number of points in the series.
func (s MPriceSeries) Len() int {
	return len(s.Points)
}

// Values returns the point values in series order.
func (s MPriceSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// NewPriceSeries attributes decoded points to a zone.
func NewPriceSeries(zone ZoneCode, start, end time.Time, points []MTimePoint) MPriceSeries {
	series := MPriceSeries{
		Zone:   zone,
		Start:  start,
		End:    end,
		Points: make([]MPricePoint, 0, len(points)),
	}
	for _, p := range points {
		series.Points = append(series.Points, MPricePoint{Zone: zone, Timestamp: p.Timestamp, Value: p.Value})
	}
	return series
}
