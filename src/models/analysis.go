package models

import "time"

// MRankedHour is a display projection of a price point for cheapest-hour lists.
type MRankedHour struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// AnomalyKind classifies a statistical outlier in a price series.
type AnomalyKind string

const (
	AnomalySpikeHigh     AnomalyKind = "SPIKE_HIGH"
	AnomalySpikeLow      AnomalyKind = "SPIKE_LOW"
	AnomalyNegativePrice AnomalyKind = "NEGATIVE_PRICE"
)

type MAnomaly struct {
	Timestamp time.Time   `json:"timestamp"`
	Value     float64     `json:"value"`
	Kind      AnomalyKind `json:"kind"`
	ZScore    float64     `json:"zscore"`
}

// MSeriesStats summarizes a price series.
type MSeriesStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}
