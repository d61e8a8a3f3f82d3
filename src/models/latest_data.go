package models

import "time"

// -----------------------------------------------------------------------------
// Pipeline output
// -----------------------------------------------------------------------------

// MZoneReport is the outcome of one zone within a pipeline run.
type MZoneReport struct {
	Zone          ZoneCode      `json:"zone"`
	Points        int           `json:"points"`
	Inserted      int           `json:"inserted"`
	Synthetic     bool          `json:"synthetic"`
	Price         float64       `json:"price"`
	Stats         MSeriesStats  `json:"stats"`
	CheapestHours []MRankedHour `json:"cheapest_hours"`
	Alerts        []MAlert      `json:"alerts"`
	Anomalies     []MAnomaly    `json:"anomalies"`
	Error         string        `json:"error,omitempty"`
}

// MRunReport aggregates one pass over all configured zones.
type MRunReport struct {
	RunID      string                   `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Window     time.Time                `json:"window"`
	ZonePrices map[ZoneCode]float64     `json:"zone_prices"`
	Zones      map[ZoneCode]MZoneReport `json:"zones"`
}

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type       string                   `json:"type"` // "INITIAL" or "UPDATE"
	RunID      string                   `json:"run_id"`
	ZonePrices map[ZoneCode]float64     `json:"zone_prices"`
	Zones      map[ZoneCode]MZoneReport `json:"zones"`
	Timestamp  int64                    `json:"timestamp"`
}

// MSubscribeCommand for client messages
type MSubscribeCommand struct {
	Command string   `json:"command"`
	Zones   []string `json:"zones"`
}
