package calibrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// uniformTables has every bin 1 ns wide and no epsilon, pedestals or
// interleave offsets.
func uniformTables() CalibrationTables {
	tables := CalibrationTables{
		Pedestals:  &PedestalTable{},
		Timebase:   &TimebaseTable{},
		Epsilon:    &EpsilonTable{},
		Interleave: &InterleaveTable{},
	}
	for chip := 0; chip < NumChips; chip++ {
		for phase := 0; phase < NumPhases; phase++ {
			for samp := 0; samp < MaxSamples; samp++ {
				tables.Timebase.BinWidths[chip][phase][samp] = 1
			}
		}
	}
	return tables
}

func newRawChannel(chanId int, first int, last int, flag uint8) RawChannel {
	ch := RawChannel{
		ChanId:      uint8(chanId),
		ChipIdFlag:  flag,
		FirstHitbus: uint16(first),
		LastHitbus:  uint16(last),
	}
	for samp := range ch.Data {
		ch.Data[samp] = uint16(samp + 1)
	}
	return ch
}

// newRawEvent fills every channel with a ramp and a hitbus window of
// [100, 400).
func newRawEvent(eventNumber uint32) *RawEvent {
	event := &RawEvent{EventNumber: eventNumber, UnixTime: 1294924296, StationId: ARA_TESTBED}
	for i := range event.Chan {
		event.Chan[i] = newRawChannel(i, 100, 400, hitbusWrapMask)
		for samp := range event.Chan[i].Data {
			event.Chan[i].Data[samp] = uint16(100 + (samp*7+i*13)%300)
		}
	}
	return event
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}
