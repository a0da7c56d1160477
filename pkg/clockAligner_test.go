package calibrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clockTrace samples a ClockPeriod sine every ns, rising through zero at
// lag plus whole periods.
func clockTrace(n int, lag float64) ([]float64, []float64) {
	times := make([]float64, n)
	volts := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
		volts[i] = 200 * math.Sin(2*math.Pi*(times[i]-lag)/ClockPeriod)
	}
	return times, volts
}

func TestEstimateClockLag(t *testing.T) {
	times, volts := clockTrace(500, 3.5)
	lag, ok := EstimateClockLag(times, volts)
	require.True(t, ok)
	assert.InDelta(t, 3.5, lag, 1e-6)

	times, volts = clockTrace(500, 13.5)
	lag, ok = EstimateClockLag(times, volts)
	require.True(t, ok)
	assert.InDelta(t, 13.5, lag, 1e-6)

	// A DC level does not move the crossings
	for i := range volts {
		volts[i] += 150
	}
	lag, ok = EstimateClockLag(times, volts)
	require.True(t, ok)
	assert.InDelta(t, 13.5, lag, 1e-6)
}

func TestEstimateClockLagPeriodAmbiguity(t *testing.T) {
	// Crossings at 19.9 and 40.1 fold to 19.9 and 0.1, the second one is
	// moved a period up to sit next to the first
	times := []float64{19.8, 20.0, 30.0, 40.0, 40.2}
	volts := []float64{-1, 1, 0, -1, 1}
	lag, ok := EstimateClockLag(times, volts)
	require.True(t, ok)
	assert.InDelta(t, 20.0, lag, 1e-9)
}

func TestEstimateClockLagDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
		volts []float64
	}{
		{"empty", nil, nil},
		{"two samples", []float64{0, 1}, []float64{-1, 1}},
		{"flat", []float64{0, 1, 2, 3}, []float64{5, 5, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lag, ok := EstimateClockLag(tt.times, tt.volts)
			assert.False(t, ok)
			assert.Equal(t, 0.0, lag)
		})
	}
}

func TestClockAlignOffset(t *testing.T) {
	assert.Equal(t, 0.0, clockAlignOffset(8.5, 8.5))
	assert.Equal(t, 2.0, clockAlignOffset(5, 3))
	// Chip locked one cycle late
	assert.Equal(t, 10.0-5.0-25.0, clockAlignOffset(10, 5))
	// Chip locked one cycle early
	assert.Equal(t, 5.0-10.0+25.0, clockAlignOffset(5, 10))
	// Between the bands nothing is corrected
	assert.Equal(t, 7.5-9.5, clockAlignOffset(7.5, 9.5))
}

func clockEvent(lags [NumChips]float64) *CalibratedEvent {
	event := &CalibratedEvent{}
	for chip := 0; chip < NumChips; chip++ {
		times, volts := clockTrace(500, lags[chip])
		event.Channels[ChanIndex(chip, ClockChannel)] = CalibratedChannel{Times: times, Volts: volts, NumPoints: len(times)}
	}
	return event
}

func TestCalcClockAlignValsIdenticalClocks(t *testing.T) {
	event := clockEvent([NumChips]float64{3.5, 3.5, 3.5})
	alignVals := CalcClockAlignVals(event)
	assert.Equal(t, [NumChips]float64{0, 0, 0}, alignVals)
}

func TestCalcClockAlignVals(t *testing.T) {
	event := clockEvent([NumChips]float64{3.5, 5.5, 2.5})
	alignVals := CalcClockAlignVals(event)
	assert.Equal(t, 0.0, alignVals[0])
	assert.InDelta(t, -2.0, alignVals[1], 1e-6)
	assert.InDelta(t, 1.0, alignVals[2], 1e-6)
}

func TestCalcClockAlignValsNoClock(t *testing.T) {
	event := &CalibratedEvent{}
	assert.Equal(t, [NumChips]float64{}, CalcClockAlignVals(event))
}

func flatClock(event *CalibratedEvent, chip int) {
	times, volts := clockTrace(500, 0)
	for i := range volts {
		volts[i] = 5
	}
	event.Channels[ChanIndex(chip, ClockChannel)] = CalibratedChannel{Times: times, Volts: volts, NumPoints: len(times)}
}

func TestCalcClockAlignValsChipWithoutCrossings(t *testing.T) {
	// A lag of 12.5 on chip 0 would trigger the -25 correction for a chip
	// wrongly read as lag 0
	event := clockEvent([NumChips]float64{12.5, 0, 12.5})
	flatClock(event, 1)
	alignVals := CalcClockAlignVals(event)
	assert.Equal(t, 0.0, alignVals[0])
	assert.Equal(t, 0.0, alignVals[1])
	assert.InDelta(t, 0.0, alignVals[2], 1e-6)
}

func TestCalcClockAlignValsReferenceWithoutCrossings(t *testing.T) {
	event := clockEvent([NumChips]float64{0, 3.5, 12.5})
	flatClock(event, 0)
	assert.Equal(t, [NumChips]float64{}, CalcClockAlignVals(event))
}

func TestApplyClockAlignment(t *testing.T) {
	event := newCalibratedEvent(&RawEvent{}, CalType{Name: "second-calib", Code: SecondCalib})
	ApplyClockAlignment(event, [NumChips]float64{0, 1.5, -2})
	assert.Equal(t, 0.0, event.Channels[ChanIndex(0, 4)].Times[10])
	assert.Equal(t, 1.5, event.Channels[ChanIndex(1, 0)].Times[0])
	assert.Equal(t, -2.0, event.Channels[ChanIndex(2, 8)].Times[MaxSamples-1])
}
