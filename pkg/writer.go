package calibrator

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer stores calibrated events in an HDF5 file. Only the goroutine that
// created it may use it.
type Writer struct {
	File     *hdf5.File
	Filename string
	FirstEvt bool

	RunGroup   *hdf5.Group
	CalibGroup *hdf5.Group
	RDGroup    *hdf5.Group
	RFGroup    *hdf5.Group

	EventTable   *hdf5.Dataset
	RunInfoTable *hdf5.Dataset
	Phases       *hdf5.Dataset
	ClockAlign   *hdf5.Dataset
	RDTimes      *hdf5.Dataset
	RDVolts      *hdf5.Dataset
	RDNumPoints  *hdf5.Dataset
	RFTimes      *hdf5.Dataset
	RFVolts      *hdf5.Dataset
	RFNumPoints  *hdf5.Dataset

	EvtCounter int
}

func NewWriter(filename string) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	var err error
	writer := &Writer{Filename: filename}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	}
	if writer.File, err = openFile(filename); err != nil {
		return nil, err
	}

	groups := []struct {
		name  string
		group **hdf5.Group
	}{
		{"Run", &writer.RunGroup},
		{"Calib", &writer.CalibGroup},
		{"RD", &writer.RDGroup},
		{"RF", &writer.RFGroup},
	}
	for _, g := range groups {
		if *g.group, err = createGroup(writer.File, g.name); err != nil {
			return nil, errors.Join(err, writer.Close())
		}
	}

	if writer.EventTable, err = createTable(writer.RunGroup, "events", EventDataHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.RunInfoTable, err = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	return writer, nil
}

func (w *Writer) createArrays() error {
	arrays := []struct {
		dset  **hdf5.Dataset
		group *hdf5.Group
		name  string
		dtype *hdf5.Datatype
		n     int
		// zero for 2d arrays
		samples int
	}{
		{&w.Phases, w.CalibGroup, "phases", hdf5.T_NATIVE_INT32, NumChips, 0},
		{&w.ClockAlign, w.CalibGroup, "clock_align", hdf5.T_NATIVE_DOUBLE, NumChips, 0},
		{&w.RDTimes, w.RDGroup, "times", hdf5.T_NATIVE_DOUBLE, NumDigitizedChannels, MaxSamples},
		{&w.RDVolts, w.RDGroup, "volts", hdf5.T_NATIVE_DOUBLE, NumDigitizedChannels, MaxSamples},
		{&w.RDNumPoints, w.RDGroup, "num_points", hdf5.T_NATIVE_INT32, NumDigitizedChannels, 0},
		{&w.RFTimes, w.RFGroup, "times", hdf5.T_NATIVE_DOUBLE, NumRFChannels, RFWaveformLength},
		{&w.RFVolts, w.RFGroup, "volts", hdf5.T_NATIVE_DOUBLE, NumRFChannels, RFWaveformLength},
		{&w.RFNumPoints, w.RFGroup, "num_points", hdf5.T_NATIVE_INT32, NumRFChannels, 0},
	}
	var err error
	for _, a := range arrays {
		if a.samples > 0 {
			*a.dset, err = create3dArray(a.group, a.name, a.dtype, a.n, a.samples)
		} else {
			*a.dset, err = create2dArray(a.group, a.name, a.dtype, a.n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteEvent(event *CalibratedEvent) error {
	if !w.FirstEvt {
		runInfo := RunInfoHDF5{station: int32(event.StationId), cal_type: event.CalType.String()}
		if err := writeEntryToTable(w.RunInfoTable, runInfo, 0); err != nil {
			return fmt.Errorf("error writing run info: %w", err)
		}
		if err := w.createArrays(); err != nil {
			return err
		}
		w.FirstEvt = true
	}

	evtData := EventDataHDF5{
		evt_number: int32(event.EventNumber),
		unix_time:  event.UnixTime,
	}
	if err := writeEntryToTable(w.EventTable, evtData, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", event.EventNumber, err)
	}

	phases := make([]int32, NumChips)
	for chip, phase := range event.Phases {
		phases[chip] = int32(phase)
	}
	clockAlign := event.ClockAlignVals[:]

	rdTimes, rdVolts, rdNumPoints := flattenChannels(event.Channels[:], MaxSamples,
		func(ch CalibratedChannel) ([]float64, []float64, int) { return ch.Times, ch.Volts, ch.NumPoints })
	rfTimes, rfVolts, rfNumPoints := flattenChannels(event.RFChannels[:], RFWaveformLength,
		func(ch CalibratedRFChannel) ([]float64, []float64, int) { return ch.Times, ch.Volts, ch.NumPoints })

	errs := []error{
		write2dArray(w.Phases, &phases, w.EvtCounter, NumChips),
		write2dArray(w.ClockAlign, &clockAlign, w.EvtCounter, NumChips),
		write3dArray(w.RDTimes, &rdTimes, w.EvtCounter, NumDigitizedChannels, MaxSamples),
		write3dArray(w.RDVolts, &rdVolts, w.EvtCounter, NumDigitizedChannels, MaxSamples),
		write2dArray(w.RDNumPoints, &rdNumPoints, w.EvtCounter, NumDigitizedChannels),
		write3dArray(w.RFTimes, &rfTimes, w.EvtCounter, NumRFChannels, RFWaveformLength),
		write3dArray(w.RFVolts, &rfVolts, w.EvtCounter, NumRFChannels, RFWaveformLength),
		write2dArray(w.RFNumPoints, &rfNumPoints, w.EvtCounter, NumRFChannels),
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("error writing waveforms of event %d: %w", event.EventNumber, err)
	}

	w.EvtCounter++
	return nil
}

// flattenChannels packs per channel waveforms into the row major layout of
// a [channel][sample] array. Short or missing waveforms are zero filled.
func flattenChannels[C any](channels []C, nSamples int, fields func(C) ([]float64, []float64, int)) ([]float64, []float64, []int32) {
	times := make([]float64, len(channels)*nSamples)
	volts := make([]float64, len(channels)*nSamples)
	numPoints := make([]int32, len(channels))
	for i, ch := range channels {
		t, v, n := fields(ch)
		copy(times[i*nSamples:(i+1)*nSamples], t)
		copy(volts[i*nSamples:(i+1)*nSamples], v)
		numPoints[i] = int32(n)
	}
	return times, volts, numPoints
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "writer")
	}
	var errs []error

	datasets := []struct {
		name string
		dset *hdf5.Dataset
	}{
		{"event table", w.EventTable},
		{"run info table", w.RunInfoTable},
		{"phases", w.Phases},
		{"clock alignment values", w.ClockAlign},
		{"RD times", w.RDTimes},
		{"RD volts", w.RDVolts},
		{"RD num points", w.RDNumPoints},
		{"RF times", w.RFTimes},
		{"RF volts", w.RFVolts},
		{"RF num points", w.RFNumPoints},
	}
	for _, d := range datasets {
		if d.dset == nil {
			continue
		}
		if err := d.dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", d.name, err))
		}
	}

	groups := []struct {
		name  string
		group *hdf5.Group
	}{
		{"run", w.RunGroup},
		{"calib", w.CalibGroup},
		{"RD", w.RDGroup},
		{"RF", w.RFGroup},
	}
	for _, g := range groups {
		if g.group == nil {
			continue
		}
		if err := g.group.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s group: %w", g.name, err))
		}
	}

	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ProcessCalibratedEvent writes the event unless writing is disabled or the
// event failed and errors are discarded.
func ProcessCalibratedEvent(event *CalibratedEvent, configuration Configuration, writer *Writer) error {
	if !configuration.WriteData {
		return nil
	}
	if event.Error && configuration.Discard {
		logger.Error(fmt.Sprintf("discarding event %d", event.EventNumber))
		return nil
	}
	return writer.WriteEvent(event)
}
