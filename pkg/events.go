package calibrator

// RawChannel is one digitized channel as read out: a circular buffer plus
// the hitbus markers that tell where the write pointer stopped.
type RawChannel struct {
	ChanId      uint8
	ChipIdFlag  uint8
	FirstHitbus uint16
	LastHitbus  uint16
	Data        [MaxSamples]uint16
}

func (c *RawChannel) Chip() int {
	return int(c.ChanId) / ChannelsPerChip
}

func (c *RawChannel) Channel() int {
	return int(c.ChanId) % ChannelsPerChip
}

func (c *RawChannel) HitbusWrap() bool {
	return c.ChipIdFlag&hitbusWrapMask != 0
}

func (c *RawChannel) HitbusExtra() int {
	return int((c.ChipIdFlag & hitbusExtraMask) >> 4)
}

// RawPhase is the clock phase bit recorded by the digitizer. It is not
// reliable enough for bin width calibration, see EstimatePhases.
func (c *RawChannel) RawPhase() int {
	return int((c.ChipIdFlag & rawPhaseMask) >> 2)
}

type RawEvent struct {
	EventNumber uint32
	UnixTime    uint64
	UnixTimeUs  uint32
	StationId   StationId
	Chan        [NumDigitizedChannels]RawChannel
	// Missing flags channels absent from the event record
	Missing [NumDigitizedChannels]bool
}

// RawPhases returns, for every chip, the phase bit of its clock channel.
func (e *RawEvent) RawPhases() [NumChips]int {
	var phases [NumChips]int
	for chip := 0; chip < NumChips; chip++ {
		phases[chip] = e.Chan[ChanIndex(chip, ClockChannel)].RawPhase()
	}
	return phases
}

// CalibratedChannel holds a full MaxSamples-long time and voltage axis.
// Only the first NumPoints entries carry data.
type CalibratedChannel struct {
	Times     []float64
	Volts     []float64
	NumPoints int
}

type CalibratedRFChannel struct {
	Times     []float64
	Volts     []float64
	NumPoints int
}

type CalibratedEvent struct {
	EventNumber    uint32
	UnixTime       uint64
	StationId      StationId
	CalType        CalType
	Phases         [NumChips]int
	ClockAlignVals [NumChips]float64
	Channels       [NumDigitizedChannels]CalibratedChannel
	RFChannels     [NumRFChannels]CalibratedRFChannel
	Error          bool
}
