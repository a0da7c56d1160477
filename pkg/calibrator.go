package calibrator

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// Calibrator turns raw events into calibrated ones. The timebase, epsilon
// and interleave tables are fixed when the Calibrator is built; pedestals
// are read the first time they are needed. A Calibrator can be shared by
// any number of goroutines.
type Calibrator struct {
	tables   CalibrationTables
	geometry Geometry

	pedFile   string
	pedOnce   sync.Once
	pedestals atomic.Pointer[PedestalTable]
}

// NewCalibrator resolves the calibration directory and pedestal file from
// the configuration and the ARA_* environment variables and loads the
// timebase tables. A nil geometry means no RF channel is known.
func NewCalibrator(config Configuration, geometry Geometry) (*Calibrator, error) {
	calibDir := ResolveCalibDir(config.CalibDir, os.Getenv)
	tables, err := LoadCalibrationTables(calibDir)
	if err != nil {
		return nil, err
	}
	c := NewCalibratorWithTables(tables, geometry)
	c.pedFile = ResolvePedestalFile(config.PedestalFile, calibDir, os.Getenv)
	return c, nil
}

// NewCalibratorWithTables builds a Calibrator from tables already in
// memory. If tables.Pedestals is set it is used as is and no pedestal file
// is ever read.
func NewCalibratorWithTables(tables CalibrationTables, geometry Geometry) *Calibrator {
	if geometry == nil {
		geometry = NewStationGeometry()
	}
	c := &Calibrator{tables: tables, geometry: geometry}
	if tables.Pedestals != nil {
		c.pedOnce.Do(func() {})
		c.pedestals.Store(tables.Pedestals)
	}
	return c
}

// SetPedestalFile reads the pedestals from filename and uses them for every
// event calibrated afterwards. On error the zeroed table is installed and
// the error returned.
func (c *Calibrator) SetPedestalFile(filename string) error {
	c.pedOnce.Do(func() {})
	c.pedFile = filename
	table, err := LoadPedestals(filename)
	c.pedestals.Store(table)
	return err
}

// Pedestals returns the pedestal table, loading it on first use.
func (c *Calibrator) Pedestals() *PedestalTable {
	c.pedOnce.Do(func() {
		table, err := LoadPedestals(c.pedFile)
		if err != nil {
			logger.Error(fmt.Sprintf("%s, using zero pedestals", err.Error()))
		}
		c.pedestals.Store(table)
	})
	return c.pedestals.Load()
}

func (c *Calibrator) Geometry() Geometry {
	return c.geometry
}

func (c *Calibrator) eventTables() CalibrationTables {
	tables := c.tables
	tables.Pedestals = c.Pedestals()
	return tables
}

func newCalibratedEvent(raw *RawEvent, calType CalType) *CalibratedEvent {
	event := &CalibratedEvent{
		EventNumber: raw.EventNumber,
		UnixTime:    raw.UnixTime,
		StationId:   raw.StationId,
		CalType:     calType,
	}
	for i := range event.Channels {
		event.Channels[i] = CalibratedChannel{
			Times: make([]float64, MaxSamples),
			Volts: make([]float64, MaxSamples),
		}
	}
	return event
}

// CalibrateEvent runs the stages enabled by calType on one event. It never
// fails: bad channels come out with fewer (or zero) points and missing
// channels with none.
func (c *Calibrator) CalibrateEvent(raw *RawEvent, calType CalType) *CalibratedEvent {
	tables := c.eventTables()
	event := newCalibratedEvent(raw, calType)

	// The recorded phase bit is not good enough for bin width calibration
	if calType.HasBinWidthCalib() {
		event.Phases = EstimatePhases(raw, &tables)
	} else {
		event.Phases = raw.RawPhases()
	}

	for chanIndex := range raw.Chan {
		if raw.Missing[chanIndex] {
			continue
		}
		ch := &raw.Chan[chanIndex]
		phase := 0
		if chip := ch.Chip(); chip < NumChips {
			phase = event.Phases[chip]
		}
		cal := CalibrateBins(ch, phase, &tables)
		fillChannel(&event.Channels[chanIndex], cal, calType)
	}

	if calType.HasClockAlignment() {
		event.ClockAlignVals = CalcClockAlignVals(event)
		ApplyClockAlignment(event, event.ClockAlignVals)
	}

	for rfChan := 0; rfChan < NumRFChannels; rfChan++ {
		rf := c.buildRFChannel(event, rfChan, &tables)
		if calType.HasCableDelays() {
			ApplyCableDelay(&rf, c.geometry.CableDelay(rfChan, raw.StationId))
		}
		event.RFChannels[rfChan] = rf
	}

	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("Event %d calibrated (%s), phases %v", event.EventNumber, calType, event.Phases)
		logger.Info(message, "calibrator")
	}
	return event
}

// fillChannel copies the level dependent view of a bin calibration into
// the output channel.
func fillChannel(out *CalibratedChannel, cal *BinCalibration, calType CalType) {
	caps := calType.Capabilities()
	switch {
	case caps.BinWidthCalib:
		out.NumPoints = cal.NumValid
		copy(out.Times, cal.Times[:])
		copy(out.Volts, cal.Volts[:cal.NumValid])
	case calType.Code == NoCalib:
		out.NumPoints = MaxSamples
		for samp := 0; samp < MaxSamples; samp++ {
			out.Times[samp] = float64(samp)
		}
		copy(out.Volts, cal.RawADC[:])
	case calType.Code == JustPed:
		out.NumPoints = MaxSamples
		for samp := 0; samp < MaxSamples; samp++ {
			out.Times[samp] = float64(samp)
		}
		copy(out.Volts, cal.PedSubADC[:])
	default:
		// JustUnwrap, ADC and VoltageTime: unwrapped samples on a regular axis
		scale := 1.0
		if calType.Code == VoltageTime {
			scale = NsPerSample
		}
		out.NumPoints = cal.NumValid
		for samp := 0; samp < MaxSamples; samp++ {
			out.Times[samp] = float64(samp) * scale
		}
		copy(out.Volts, cal.Unwrapped[:cal.NumValid])
	}
}

func (c *Calibrator) buildRFChannel(event *CalibratedEvent, rfChan int, tables *CalibrationTables) CalibratedRFChannel {
	station := event.StationId
	numLabChans := c.geometry.NumLabChans(rfChan, station)
	ci1 := c.geometry.FirstLabChanIndex(rfChan, station)
	if numLabChans < 1 || !validChanIndex(ci1) {
		return newRFChannel()
	}
	first := &event.Channels[ci1]
	if numLabChans == 2 {
		ci2 := c.geometry.SecondLabChanIndex(rfChan, station)
		if validChanIndex(ci2) {
			second := &event.Channels[ci2]
			return InterleaveRFChannel(first, second, tables.Interleave.Offset(rfChan), event.CalType.HasInterleaveCalib())
		}
	}
	return SingleRFChannel(first)
}

func validChanIndex(chanIndex int) bool {
	return chanIndex >= 0 && chanIndex < NumDigitizedChannels
}
