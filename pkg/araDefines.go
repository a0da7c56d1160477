package calibrator

// Digitizer layout of an ICRR-style station. Tables are sized with these
// values, so calibration files that address anything beyond them are
// rejected at load time.
const (
	NumChips             = 3
	ChannelsPerChip      = 9
	NumDigitizedChannels = NumChips * ChannelsPerChip
	MaxSamples           = 512
	NumRFChannels        = 16
	NumPhases            = 2

	// Channel within each chip that carries the reference clock
	ClockChannel = 8
)

const (
	ClockPeriod         float64 = 20.0 // ns
	NsPerSample         float64 = 1.0
	AdcToMillivolt      float64 = 1.0
	SaturationMillivolt float64 = 1000.0
)

// Clock alignment fudge factors. They were tuned by hand on pulser data to
// undo wrong-cycle lock in and have no derivation. Keep them as they are.
const (
	clockCycleCorrection  float64 = 25.0
	clockLagLowThreshold  float64 = 8.0
	clockLagHighThreshold float64 = 9.0
	clockRefLowThreshold  float64 = 7.0
)

// Phase (RCO) estimation parameters
const (
	minZeroCrossingSpacing float64 = 10.0 // ns
	rcoPeriodTolerance     float64 = 0.5
	rcoMaxPeriodRMS        float64 = 4.0
)

// chipIdFlag bit layout
const (
	hitbusWrapMask  uint8 = 0x08
	hitbusExtraMask uint8 = 0xf0
	rawPhaseMask    uint8 = 0x04
)

type StationId uint16

const (
	ARA_TESTBED  StationId = 0
	ARA_STATION1 StationId = 1
)

func (s StationId) String() string {
	switch s {
	case ARA_TESTBED:
		return "TestBed"
	case ARA_STATION1:
		return "Station1"
	default:
		return "Unknown"
	}
}

// ChanIndex converts a chip and a channel within the chip into the
// digitized channel index used throughout the event.
func ChanIndex(chip int, channel int) int {
	return chip*ChannelsPerChip + channel
}
