package calibrator

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const DefaultPedestalFilename = "peds_1294924296.869787.run001202.dat"

// PedestalChannelStruct is the on-disk pedestal record of one digitized
// channel.
type PedestalChannelStruct struct {
	ChanId     uint8
	ChipIdFlag uint8
	Pad        uint16
	PedMean    [MaxSamples]float32
	PedRMS     [MaxSamples]float32
}

type FullPedestalStruct struct {
	UnixTime  uint32
	NumEvents uint32
	Chan      [NumDigitizedChannels]PedestalChannelStruct
}

// PedestalTable holds the mean baseline of every chip, channel and sample.
// It is never modified once loaded.
type PedestalTable struct {
	Filename string
	Values   [NumChips][ChannelsPerChip][MaxSamples]float64
}

func (p *PedestalTable) Get(chip int, channel int, sample int) float64 {
	if p == nil {
		return 0
	}
	if chip < 0 || chip >= NumChips || channel < 0 || channel >= ChannelsPerChip ||
		sample < 0 || sample >= MaxSamples {
		return 0
	}
	return p.Values[chip][channel][sample]
}

// ResolveCalibDir returns the directory holding the calibration files:
// explicit override, then ARA_CALIB_DIR, then the ARA_UTIL_INSTALL_DIR
// share directory and finally ./calib.
func ResolveCalibDir(override string, getenv func(string) string) string {
	if override != "" {
		return override
	}
	if calibEnv := getenv("ARA_CALIB_DIR"); calibEnv != "" {
		return calibEnv
	}
	if utilEnv := getenv("ARA_UTIL_INSTALL_DIR"); utilEnv != "" {
		return filepath.Join(utilEnv, "share", "araCalib")
	}
	return "calib"
}

// ResolvePedestalFile applies the pedestal file precedence: explicit
// override, ARA_PEDESTAL_FILE, then the default file in calibDir.
func ResolvePedestalFile(override string, calibDir string, getenv func(string) string) string {
	if override != "" {
		return override
	}
	if pedEnv := getenv("ARA_PEDESTAL_FILE"); pedEnv != "" {
		return pedEnv
	}
	return filepath.Join(calibDir, DefaultPedestalFilename)
}

// LoadPedestals reads a gzip compressed pedestal file. The returned table is
// never nil: when the file cannot be read the error is returned together
// with an all-zero table so calibration can go on.
func LoadPedestals(filename string) (*PedestalTable, error) {
	table := &PedestalTable{Filename: filename}

	file, err := os.Open(filename)
	if err != nil {
		return table, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return table, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer gz.Close()

	peds := new(FullPedestalStruct)
	if err := binary.Read(gz, binary.LittleEndian, peds); err != nil {
		return table, &ErrOpenFile{Filename: filename, Err: fmt.Errorf("error reading pedestal record: %w", err)}
	}

	for chip := 0; chip < NumChips; chip++ {
		for chan_ := 0; chan_ < ChannelsPerChip; chan_++ {
			chanIndex := ChanIndex(chip, chan_)
			for samp := 0; samp < MaxSamples; samp++ {
				table.Values[chip][chan_][samp] = float64(peds.Chan[chanIndex].PedMean[samp])
			}
		}
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Pedestals read from %s (%d events)", filename, peds.NumEvents)
		logger.Info(message, "pedestals")
	}
	return table, nil
}

// WritePedestals stores a table in the same gzip format LoadPedestals reads.
func WritePedestals(filename string, table *PedestalTable, numEvents uint32) error {
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	peds := new(FullPedestalStruct)
	peds.NumEvents = numEvents
	for chip := 0; chip < NumChips; chip++ {
		for chan_ := 0; chan_ < ChannelsPerChip; chan_++ {
			chanIndex := ChanIndex(chip, chan_)
			peds.Chan[chanIndex].ChanId = uint8(chanIndex)
			for samp := 0; samp < MaxSamples; samp++ {
				peds.Chan[chanIndex].PedMean[samp] = float32(table.Values[chip][chan_][samp])
			}
		}
	}

	gz := gzip.NewWriter(file)
	if err := binary.Write(gz, binary.LittleEndian, peds); err != nil {
		gz.Close()
		return fmt.Errorf("error writing pedestal record: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("error closing pedestal file: %w", err)
	}
	return file.Close()
}
