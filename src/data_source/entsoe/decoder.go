package entsoe

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/models"
)

// ValueField selects which numeric child of a Point is extracted.
type ValueField string

const (
	FieldPriceAmount ValueField = "price.amount"
	FieldQuantity    ValueField = "quantity"
)

// DefaultResolution is used when a Period declares no parseable resolution.
const DefaultResolution = time.Hour

const acknowledgementDocument = "Acknowledgement_MarketDocument"

// startLayouts are tried in order; instants without an offset are read as UTC.
var startLayouts = []string{
	"2006-01-02T15:04Z",
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

var resolutionPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?)?$`)

// -----------------------------------------------------------------------------
// Wire format
// -----------------------------------------------------------------------------

// Tags carry no namespace, so elements match by local name whatever
// default namespace the producer declares.
type xmlDocument struct {
	XMLName    xml.Name
	TimeSeries []xmlTimeSeries `xml:"TimeSeries"`
	Reasons    []xmlReason     `xml:"Reason"`
}

type xmlReason struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

type xmlTimeSeries struct {
	MRID    string      `xml:"mRID"`
	Periods []xmlPeriod `xml:"Period"`
}

type xmlPeriod struct {
	TimeInterval *xmlInterval `xml:"timeInterval"`
	Resolution   string       `xml:"resolution"`
	Points       []xmlPoint   `xml:"Point"`
}

type xmlInterval struct {
	Start string `xml:"start"`
	End   string `xml:"end"`
}

type xmlPoint struct {
	Position string     `xml:"position"`
	Fields   []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (p xmlPoint) lookup(field ValueField) (string, bool) {
	for _, f := range p.Fields {
		if f.XMLName.Local == string(field) {
			return f.Value, true
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------
// Decoding
// -----------------------------------------------------------------------------

// DecodeTimeSeries parses a market document into chronologically ordered
// points. Each point's time is period start + (position-1) * resolution.
// Points without the requested field are skipped. Every failure is returned
// as a *helpers.DecodeError.
func DecodeTimeSeries(raw []byte, field ValueField) ([]models.MTimePoint, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, helpers.NewDecodeError("malformed xml", err)
	}

	if doc.XMLName.Local == acknowledgementDocument {
		return nil, helpers.NewDecodeError(fmt.Sprintf("market api acknowledgement: %s", reasonText(doc.Reasons)), nil)
	}

	var points []models.MTimePoint
	for ti, ts := range doc.TimeSeries {
		for pi, period := range ts.Periods {
			decoded, err := decodePeriod(period, field)
			if err != nil {
				return nil, helpers.NewDecodeError(fmt.Sprintf("time series %d period %d", ti+1, pi+1), err)
			}
			points = append(points, decoded...)
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

// -----------------------------------------------------------------------------

func decodePeriod(period xmlPeriod, field ValueField) ([]models.MTimePoint, error) {
	if period.TimeInterval == nil || strings.TrimSpace(period.TimeInterval.Start) == "" {
		return nil, fmt.Errorf("missing timeInterval start")
	}
	start, err := ParseInstant(period.TimeInterval.Start)
	if err != nil {
		return nil, err
	}

	step, ok := ParseResolution(period.Resolution)
	if !ok {
		step = DefaultResolution
	}

	points := make([]models.MTimePoint, 0, len(period.Points))
	for _, pt := range period.Points {
		rawValue, ok := pt.lookup(field)
		if !ok {
			continue
		}

		position, err := strconv.Atoi(strings.TrimSpace(pt.Position))
		if err != nil || position < 1 {
			return nil, fmt.Errorf("invalid position %q", pt.Position)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric %s %q at position %d", field, rawValue, position)
		}

		points = append(points, models.MTimePoint{
			Timestamp: start.Add(time.Duration(position-1) * step),
			Value:     value,
		})
	}
	return points, nil
}

// -----------------------------------------------------------------------------

// ParseInstant reads an interval boundary such as "2024-01-01T00:00Z" as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable instant %q", s)
}

// ParseResolution converts an ISO 8601 duration like PT15M, PT60M or P1D.
func ParseResolution(s string) (time.Duration, bool) {
	m := resolutionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	var d time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		d += time.Duration(n) * unit
	}
	if d <= 0 {
		return 0, false
	}
	return d, true
}

func reasonText(reasons []xmlReason) string {
	if len(reasons) == 0 {
		return "no reason given"
	}
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		text := strings.TrimSpace(r.Text)
		if r.Code != "" {
			text = fmt.Sprintf("[%s] %s", r.Code, text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "; ")
}
