package calibrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrateBinsValidWindow(t *testing.T) {
	tables := uniformTables()
	tests := []struct {
		name          string
		first, last   int
		flag          uint8
		expectedValid int
	}{
		{"not wrapped", 10, 500, 0, (512 - 501) + 10},
		{"wrapped", 10, 20, hitbusWrapMask, 9},
		{"wrapped with extra", 10, 20, hitbusWrapMask | 0x10, 10},
		{"not wrapped with extra", 10, 500, 0x20, (512 - 503) + 10},
		{"hitbus beyond buffer", 700, 600, 0, MaxSamples},
		{"empty wrapped window", 30, 31, hitbusWrapMask, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := newRawChannel(0, tt.first, tt.last, tt.flag)
			cal := CalibrateBins(&ch, 0, &tables)
			assert.Equal(t, tt.expectedValid, cal.NumValid)
		})
	}
}

func TestCalibrateBinsTimesMonotonic(t *testing.T) {
	tables := uniformTables()
	for samp := 0; samp < MaxSamples; samp++ {
		tables.Timebase.BinWidths[1][0][samp] = 0.5 + float64(samp%5)*0.2
		tables.Timebase.BinWidths[1][1][samp] = 1.5 - float64(samp%3)*0.3
	}
	tables.Epsilon.Values[1][0] = 3.2
	tables.Epsilon.Values[1][1] = -0.4

	for _, flag := range []uint8{0, hitbusWrapMask} {
		for phase := 0; phase < NumPhases; phase++ {
			ch := newRawChannel(ChanIndex(1, 3), 57, 311, flag)
			cal := CalibrateBins(&ch, phase, &tables)
			for i := 1; i < MaxSamples; i++ {
				require.LessOrEqual(t, cal.Times[i-1], cal.Times[i], "flag %d phase %d sample %d", flag, phase, i)
			}
		}
	}
}

func TestCalibrateBinsEpsilonAtWrap(t *testing.T) {
	tables := uniformTables()
	// The first segment runs on the opposite phase widths
	for samp := 0; samp < MaxSamples; samp++ {
		tables.Timebase.BinWidths[0][1][samp] = 2
	}
	tables.Epsilon.Values[0][0] = 7
	tables.Epsilon.Values[0][1] = 100

	ch := newRawChannel(0, 10, 500, 0)
	cal := CalibrateBins(&ch, 0, &tables)
	require.Equal(t, 21, cal.NumValid)

	// Samples 501..511
	for i := 0; i < 11; i++ {
		assert.Equal(t, float64(2*i), cal.Times[i])
		assert.Equal(t, float64(502+i), cal.Volts[i])
	}
	// 11 widths of 2 ns plus epsilon, then samples 0..9
	for i := 11; i < 21; i++ {
		assert.Equal(t, 22+7+float64(i-11), cal.Times[i])
		assert.Equal(t, float64(i-11+1), cal.Volts[i])
	}
	// Padding steps by one with zero voltage
	assert.Equal(t, 39.0, cal.Times[21])
	assert.Equal(t, 40.0, cal.Times[22])
	assert.Equal(t, 0.0, cal.Volts[21])
	assert.Equal(t, 39.0+float64(MaxSamples-1-21), cal.Times[MaxSamples-1])
}

func TestCalibrateBinsWrappedUsesPhaseWidths(t *testing.T) {
	tables := uniformTables()
	for samp := 0; samp < MaxSamples; samp++ {
		tables.Timebase.BinWidths[0][1][samp] = 3
	}
	tables.Epsilon.Values[0][1] = 50

	ch := newRawChannel(0, 10, 20, hitbusWrapMask)
	cal := CalibrateBins(&ch, 1, &tables)
	require.Equal(t, 9, cal.NumValid)
	for i := 0; i < 9; i++ {
		assert.Equal(t, float64(3*i), cal.Times[i])
		assert.Equal(t, float64(12+i), cal.Volts[i])
	}
	// No epsilon on the wrapped path
	assert.Equal(t, 27.0, cal.Times[9])
}

func TestCalibrateBinsPedestalAndClamp(t *testing.T) {
	tables := uniformTables()
	ch := newRawChannel(ChanIndex(2, 4), 0, 511, hitbusWrapMask)
	for samp := range ch.Data {
		ch.Data[samp] = 300
		tables.Pedestals.Values[2][4][samp] = 100
	}
	ch.Data[5] = 0
	ch.Data[6] = 4000
	ch.Data[7] = 1

	cal := CalibrateBins(&ch, 0, &tables)
	assert.Equal(t, 0.0, cal.PedSubADC[5], "zero raw means no data")
	assert.Equal(t, 3900.0, cal.PedSubADC[6])
	assert.Equal(t, 200.0, cal.PedSubADC[8])

	// Window starts at sample 1
	assert.Equal(t, 0.0, cal.Unwrapped[4])
	assert.Equal(t, SaturationMillivolt, cal.Unwrapped[5])
	assert.Equal(t, -99.0, cal.Unwrapped[6])
	assert.Equal(t, 300.0, cal.RawADC[0])
}

func TestCalibrateBinsSortTies(t *testing.T) {
	tables := uniformTables()
	// Zero widths produce equal times that keep their unwrapped order
	for samp := 0; samp < MaxSamples; samp++ {
		tables.Timebase.BinWidths[0][0][samp] = 0
	}
	ch := newRawChannel(0, 10, 20, hitbusWrapMask)
	cal := CalibrateBins(&ch, 0, &tables)
	for i := 0; i < cal.NumValid; i++ {
		assert.Equal(t, 0.0, cal.Times[i])
		assert.Equal(t, float64(12+i), cal.Volts[i])
	}
}

func TestCalibrateBinsNilTables(t *testing.T) {
	ch := newRawChannel(0, 10, 500, 0)
	cal := CalibrateBins(&ch, 0, &CalibrationTables{})
	assert.Equal(t, 21, cal.NumValid)
	assert.Equal(t, 0.0, cal.Times[20])
}
