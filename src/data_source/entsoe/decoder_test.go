package entsoe

import (
	"errors"
	"testing"
	"time"

	"gridwatch/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Publication_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-3:publicationdocument:7:3">
  <mRID>a1b2c3</mRID>
  <type>A44</type>
  <period.timeInterval>
    <start>2024-01-01T00:00Z</start>
    <end>2024-01-02T00:00Z</end>
  </period.timeInterval>
  <TimeSeries>
    <mRID>1</mRID>
    <currency_Unit.name>EUR</currency_Unit.name>
    <price_Measure_Unit.name>MWH</price_Measure_Unit.name>
    <Period>
      <timeInterval>
        <start>2024-01-01T00:00Z</start>
        <end>2024-01-02T00:00Z</end>
      </timeInterval>
      <resolution>PT60M</resolution>
      <Point><position>1</position><price.amount>50.12</price.amount></Point>
      <Point><position>2</position><price.amount>-3.5</price.amount></Point>
      <Point><position>3</position><price.amount>30</price.amount></Point>
    </Period>
  </TimeSeries>
</Publication_MarketDocument>`

const quantityDocument = `<GL_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0">
  <TimeSeries>
    <Period>
      <timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T01:00Z</end></timeInterval>
      <resolution>PT15M</resolution>
      <Point><position>1</position><quantity>1200</quantity></Point>
      <Point><position>2</position><quantity>1250</quantity></Point>
      <Point><position>4</position><quantity>1300</quantity></Point>
    </Period>
  </TimeSeries>
</GL_MarketDocument>`

func TestDecode_PositionMapping(t *testing.T) {
	points, err := DecodeTimeSeries([]byte(priceDocument), FieldPriceAmount)
	require.NoError(t, err)
	require.Len(t, points, 3)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start, points[0].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC), points[2].Timestamp)
	assert.InDelta(t, 50.12, points[0].Value, 1e-9)
	assert.InDelta(t, -3.5, points[1].Value, 1e-9)
}

func TestDecode_WithoutNamespace(t *testing.T) {
	doc := `<Publication_MarketDocument><TimeSeries><Period>
	  <timeInterval><start>2024-03-10T23:00Z</start></timeInterval>
	  <Point><position>2</position><price.amount>12.5</price.amount></Point>
	</Period></TimeSeries></Publication_MarketDocument>`

	points, err := DecodeTimeSeries([]byte(doc), FieldPriceAmount)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), points[0].Timestamp, "missing resolution defaults to one hour")
}

func TestDecode_TagSelectivity(t *testing.T) {
	points, err := DecodeTimeSeries([]byte(quantityDocument), FieldPriceAmount)
	require.NoError(t, err)
	assert.Empty(t, points)

	points, err = DecodeTimeSeries([]byte(priceDocument), FieldQuantity)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDecode_ResolutionStep(t *testing.T) {
	points, err := DecodeTimeSeries([]byte(quantityDocument), FieldQuantity)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC), points[1].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 45, 0, 0, time.UTC), points[2].Timestamp)
}

func TestDecode_MultipleSeriesSortedChronologically(t *testing.T) {
	doc := `<Publication_MarketDocument>
	  <TimeSeries><Period>
	    <timeInterval><start>2024-01-01T12:00Z</start></timeInterval>
	    <Point><position>1</position><price.amount>70</price.amount></Point>
	  </Period></TimeSeries>
	  <TimeSeries><Period>
	    <timeInterval><start>2024-01-01T00:00Z</start></timeInterval>
	    <Point><position>1</position><price.amount>40</price.amount></Point>
	  </Period></TimeSeries>
	</Publication_MarketDocument>`

	points, err := DecodeTimeSeries([]byte(doc), FieldPriceAmount)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 40.0, points[0].Value, 1e-9)
	assert.InDelta(t, 70.0, points[1].Value, 1e-9)
}

func TestDecode_SkipsPointsWithoutTag(t *testing.T) {
	doc := `<Publication_MarketDocument><TimeSeries><Period>
	  <timeInterval><start>2024-01-01T00:00Z</start></timeInterval>
	  <Point><position>1</position></Point>
	  <Point><position>2</position><price.amount>5</price.amount></Point>
	</Period></TimeSeries></Publication_MarketDocument>`

	points, err := DecodeTimeSeries([]byte(doc), FieldPriceAmount)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), points[0].Timestamp)
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":     `<Publication_MarketDocument><TimeSeries>`,
		"empty":         ``,
		"missing start": `<Publication_MarketDocument><TimeSeries><Period><Point><position>1</position><price.amount>1</price.amount></Point></Period></TimeSeries></Publication_MarketDocument>`,
		"bad start":     `<Publication_MarketDocument><TimeSeries><Period><timeInterval><start>yesterday</start></timeInterval></Period></TimeSeries></Publication_MarketDocument>`,
		"non-numeric":   `<Publication_MarketDocument><TimeSeries><Period><timeInterval><start>2024-01-01T00:00Z</start></timeInterval><Point><position>1</position><price.amount>n/a</price.amount></Point></Period></TimeSeries></Publication_MarketDocument>`,
		"bad position":  `<Publication_MarketDocument><TimeSeries><Period><timeInterval><start>2024-01-01T00:00Z</start></timeInterval><Point><position>0</position><price.amount>1</price.amount></Point></Period></TimeSeries></Publication_MarketDocument>`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTimeSeries([]byte(doc), FieldPriceAmount)
			require.Error(t, err)
			var decErr *helpers.DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
}

func TestDecode_Acknowledgement(t *testing.T) {
	doc := `<Acknowledgement_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-1:acknowledgementdocument:7:0">
	  <Reason><code>999</code><text>No matching data found</text></Reason>
	</Acknowledgement_MarketDocument>`

	_, err := DecodeTimeSeries([]byte(doc), FieldPriceAmount)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[999] No matching data found")
}

func TestParseResolution(t *testing.T) {
	cases := map[string]time.Duration{
		"PT15M": 15 * time.Minute,
		"PT30M": 30 * time.Minute,
		"PT60M": time.Hour,
		"PT1H":  time.Hour,
		"P1D":   24 * time.Hour,
	}
	for in, want := range cases {
		got, ok := ParseResolution(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "P", "PT", "60", "PT0M", "hourly"} {
		_, ok := ParseResolution(in)
		assert.False(t, ok, in)
	}
}

func TestParseInstant(t *testing.T) {
	want := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-01T23:00Z", "2024-01-01T23:00:00Z", "2024-01-02T00:00:00+01:00", "2024-01-01T23:00"} {
		got, err := ParseInstant(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}
}
