package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMeanStd(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)

	mean, std = CalculateMeanStd([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.Zero(t, std)

	mean, std = CalculateMeanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}

func TestCalculateMinMax(t *testing.T) {
	lo, hi := CalculateMinMax([]float64{3, -1, 8, 2})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 8.0, hi)

	lo, hi = CalculateMinMax(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestCalculateZScore(t *testing.T) {
	assert.Equal(t, 2.0, CalculateZScore(9, 5, 2))
	assert.Zero(t, CalculateZScore(9, 5, 0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 46.23, Round2(46.23456))
	assert.Equal(t, -0.5, Round2(-0.499))
}
