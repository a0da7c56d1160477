package calibrator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CalcClockAlignVals returns the time shift to add to every channel of each
// chip so that its clock lines up with the clock of chip 0. A chip whose
// clock has no rising zero crossing is left at 0, and so is every chip when
// chip 0 has none.
func CalcClockAlignVals(event *CalibratedEvent) [NumChips]float64 {
	var alignVals [NumChips]float64
	var lag [NumChips]float64
	var found [NumChips]bool
	for chip := 0; chip < NumChips; chip++ {
		clock := &event.Channels[ChanIndex(chip, ClockChannel)]
		n := validLength(clock.NumPoints, clock.Times, clock.Volts)
		lag[chip], found[chip] = EstimateClockLag(clock.Times[:n], clock.Volts[:n])
		if chip > 0 && found[0] && found[chip] {
			alignVals[chip] = clockAlignOffset(lag[0], lag[chip])
		}
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Event %d clock lags %v align values %v", event.EventNumber, lag, alignVals)
		logger.Info(message, "clockAligner")
	}
	return alignVals
}

// clockAlignOffset includes the hand tuned ±25 ns correction for chips that
// locked on the wrong clock cycle.
func clockAlignOffset(refLag float64, chipLag float64) float64 {
	offset := refLag - chipLag
	if chipLag < clockLagLowThreshold && refLag > clockLagHighThreshold {
		offset -= clockCycleCorrection
	}
	if chipLag > clockLagHighThreshold && refLag < clockRefLowThreshold {
		offset += clockCycleCorrection
	}
	return offset
}

// EstimateClockLag returns the phase of a clock trace, expressed as a time
// in [0, ClockPeriod) and averaged over every negative to positive zero
// crossing. Each crossing is folded into one period and then moved by a
// whole period if that brings it closer to the first crossing.
//
// Crossings are searched on the mean subtracted trace from the second sample
// on, so a DC level on the clock does not hide them. The second result is
// false for traces with fewer than 3 samples or no crossing at all.
func EstimateClockLag(times []float64, volts []float64) (float64, bool) {
	numPoints := len(times)
	if numPoints < 3 {
		return 0, false
	}
	mean := stat.Mean(volts, nil)

	zc := make([]float64, 0, numPoints/2)
	for i := 1; i < numPoints; i++ {
		y1 := volts[i-1] - mean
		y2 := volts[i] - mean
		if y1 < 0 && y2 > 0 {
			zc = append(zc, interpolateZero(times[i-1], times[i], y1, y2))
		}
	}
	if len(zc) < 1 {
		return 0, false
	}

	firstZC := foldIntoPeriod(zc[0])
	sum := 0.0
	for _, z := range zc {
		z = foldIntoPeriod(z)
		if math.Abs((z-ClockPeriod)-firstZC) < math.Abs(z-firstZC) {
			z -= ClockPeriod
		}
		if math.Abs((z+ClockPeriod)-firstZC) < math.Abs(z-firstZC) {
			z += ClockPeriod
		}
		sum += z
	}
	return sum / float64(len(zc)), true
}

func foldIntoPeriod(t float64) float64 {
	t = math.Mod(t, ClockPeriod)
	if t < 0 {
		t += ClockPeriod
	}
	return t
}

// ApplyClockAlignment shifts the time axis of every digitized channel by
// the value of its chip.
func ApplyClockAlignment(event *CalibratedEvent, alignVals [NumChips]float64) {
	for chanIndex := range event.Channels {
		chip := chanIndex / ChannelsPerChip
		times := event.Channels[chanIndex].Times
		for samp := range times {
			times[samp] += alignVals[chip]
		}
	}
}

func validLength(numPoints int, times []float64, volts []float64) int {
	n := numPoints
	if n > len(times) {
		n = len(times)
	}
	if n > len(volts) {
		n = len(volts)
	}
	if n < 0 {
		n = 0
	}
	return n
}
