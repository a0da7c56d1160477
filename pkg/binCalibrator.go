package calibrator

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// BinCalibration is the result of calibrating one digitized channel. All
// the arrays are owned by the caller, nothing is shared between calls.
type BinCalibration struct {
	// Raw samples, buffer order
	RawADC [MaxSamples]float64
	// Pedestal subtracted samples, buffer order
	PedSubADC [MaxSamples]float64
	// Voltages in unwrapped order, zero padded after NumValid
	Unwrapped [MaxSamples]float64
	// Time ordered axis: non-decreasing over the full length
	Times [MaxSamples]float64
	Volts [MaxSamples]float64

	NumValid int
}

// CalibrateBins converts the circular buffer of a channel into a time
// ordered waveform.
//
// The valid window starts right after the last hitbus and wraps around to
// the first hitbus, unless the hitbus itself wrapped, in which case the
// window is [firstHitbus+1, lastHitbus). Times accumulate the bin widths of
// the given phase; before the wrap the opposite phase is used, since the
// digitizer reads ahead of the write pointer, and the chip epsilon is added
// once at the wrap. Positions beyond the window get zero voltage and times
// increasing by one, so the axis stays monotonic.
//
// A raw value of zero means no data and is calibrated to zero volts, which
// makes a genuine zero ADC reading indistinguishable from a missing one.
func CalibrateBins(ch *RawChannel, phase int, tables *CalibrationTables) *BinCalibration {
	cal := &BinCalibration{}
	chip := ch.Chip()
	chan_ := ch.Channel()

	var calwv [MaxSamples]float64
	for samp := 0; samp < MaxSamples; samp++ {
		raw := ch.Data[samp]
		cal.RawADC[samp] = float64(raw)
		if raw == 0 {
			continue
		}
		cal.PedSubADC[samp] = float64(raw) - tables.Pedestals.Get(chip, chan_, samp)
		calwv[samp] = clampVoltage(cal.PedSubADC[samp] * AdcToMillivolt)
	}

	hbstart := int(ch.FirstHitbus)
	hbend := int(ch.LastHitbus) + ch.HitbusExtra()

	var tempTimes [MaxSamples]float64
	calTime := 0.0
	ir := 0
	if ch.HitbusWrap() {
		for samp := hbstart + 1; samp < hbend && samp < MaxSamples; samp++ {
			tempTimes[ir] = calTime
			cal.Unwrapped[ir] = calwv[samp]
			ir++
			calTime += tables.Timebase.BinWidth(chip, phase, samp)
		}
	} else {
		for samp := hbend + 1; samp < MaxSamples; samp++ {
			tempTimes[ir] = calTime
			cal.Unwrapped[ir] = calwv[samp]
			ir++
			calTime += tables.Timebase.BinWidth(chip, 1-phase, samp)
		}
		calTime += tables.Epsilon.Epsilon(chip, phase)
		for samp := 0; samp < hbstart && samp < MaxSamples && ir < MaxSamples; samp++ {
			tempTimes[ir] = calTime
			cal.Unwrapped[ir] = calwv[samp]
			ir++
			calTime += tables.Timebase.BinWidth(chip, phase, samp)
		}
	}
	cal.NumValid = ir

	for samp := ir; samp < MaxSamples; samp++ {
		tempTimes[samp] = calTime
		calTime += 1
	}

	// Ties keep the unwrapped order
	index := make([]int, MaxSamples)
	for i := range index {
		index[i] = i
	}
	slices.SortStableFunc(index, func(a, b int) int {
		return cmp.Compare(tempTimes[a], tempTimes[b])
	})

	for i, idx := range index {
		cal.Times[i] = tempTimes[idx]
		cal.Volts[i] = cal.Unwrapped[idx]
	}
	return cal
}

func clampVoltage(mv float64) float64 {
	if mv > SaturationMillivolt {
		return SaturationMillivolt
	}
	if mv < -SaturationMillivolt {
		return -SaturationMillivolt
	}
	return mv
}
