package models

import "time"

// AlertLevel is the fixed set of alert severities written to the alert log.
type AlertLevel string

const (
	AlertWarning   AlertLevel = "WARNING"
	AlertHighPrice AlertLevel = "HIGH_PRICE"
)

// Valid reports whether the level belongs to the enumeration.
func (l AlertLevel) Valid() bool {
	return l == AlertWarning || l == AlertHighPrice
}

// MAlert is an entry of the append-only alert log. Value is only set on
// candidates produced by the analyzer; the log itself does not store it.
type MAlert struct {
	ID        int64      `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Zone      ZoneCode   `json:"zone"`
	Message   string     `json:"message"`
	Level     AlertLevel `json:"level"`
	Value     float64    `json:"value,omitempty"`
}
