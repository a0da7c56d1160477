package calibrator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EstimatePhases works out the clock phase (RCO) of every chip from its
// clock channel, instead of trusting the phase bit written by the
// digitizer. Each chip is calibrated with both phases and the one giving a
// clock period closest to ClockPeriod wins; close calls are decided by the
// period RMS. If the winner is still too noisy the raw bit is kept.
func EstimatePhases(raw *RawEvent, tables *CalibrationTables) [NumChips]int {
	var phases [NumChips]int
	for chip := 0; chip < NumChips; chip++ {
		clock := &raw.Chan[ChanIndex(chip, ClockChannel)]
		rawPhase := clock.RawPhase()

		var period, rms [NumPhases]float64
		for test := 0; test < NumPhases; test++ {
			cal := CalibrateBins(clock, test, tables)
			period[test], rms[test] = estimateClockPeriod(cal.Times[:cal.NumValid], cal.Volts[:cal.NumValid])
		}

		periodTest := math.Abs(period[0]-ClockPeriod) - math.Abs(period[1]-ClockPeriod)
		rmsTest := rms[0] - rms[1]
		guess := 1
		if periodTest < 0 {
			guess = 0
			if math.Abs(periodTest) < rcoPeriodTolerance && rmsTest > 0 {
				guess = 1
			}
		} else if math.Abs(periodTest) < rcoPeriodTolerance && rmsTest < 0 {
			guess = 0
		}
		if rms[guess] > rcoMaxPeriodRMS {
			guess = rawPhase
		}
		phases[chip] = guess

		if configuration.Verbosity > 2 {
			message := fmt.Sprintf("Event %d chip %d: periods %.3f/%.3f rms %.3f/%.3f phase %d (raw %d)",
				raw.EventNumber, chip, period[0], period[1], rms[0], rms[1], guess, rawPhase)
			logger.Info(message, "rcoGuess")
		}
	}
	return phases
}

// estimateClockPeriod measures the clock period from the spacing of the
// negative to positive zero crossings. Crossings closer than
// minZeroCrossingSpacing to the previous one are noise and skipped.
// Returns zero period when fewer than two crossings are found.
func estimateClockPeriod(times []float64, volts []float64) (float64, float64) {
	numPoints := len(times)
	if numPoints < 3 {
		return 0, 0
	}
	vVals := make([]float64, numPoints)
	copy(vVals, volts)
	floats.AddConst(-stat.Mean(vVals, nil), vVals)

	zc := make([]float64, 0, numPoints/2)
	for i := 1; i < numPoints; i++ {
		if vVals[i-1] < 0 && vVals[i] > 0 {
			zcTime := interpolateZero(times[i-1], times[i], vVals[i-1], vVals[i])
			if len(zc) > 0 && zcTime-zc[len(zc)-1] < minZeroCrossingSpacing {
				continue
			}
			zc = append(zc, zcTime)
		}
	}
	if len(zc) < 2 {
		return 0, 0
	}

	periods := make([]float64, len(zc)-1)
	for i := 1; i < len(zc); i++ {
		periods[i-1] = zc[i] - zc[i-1]
	}
	return stat.PopMeanStdDev(periods, nil)
}

// interpolateZero returns where the line through (x1,y1) and (x2,y2)
// crosses zero.
func interpolateZero(x1, x2, y1, y2 float64) float64 {
	return ((0-y1)/(y2-y1))*(x2-x1) + x1
}
