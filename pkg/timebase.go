package calibrator

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	BinWidthsFilename  = "binWidths.txt"
	EpsilonFilename    = "epsilonFile.txt"
	InterleaveFilename = "interleaveFile.txt"
)

// TimebaseTable holds the width of every sample bin, per chip and clock
// phase.
type TimebaseTable struct {
	BinWidths [NumChips][NumPhases][MaxSamples]float64
}

func (t *TimebaseTable) BinWidth(chip int, phase int, sample int) float64 {
	if t == nil || !validChipPhase(chip, phase) || sample < 0 || sample >= MaxSamples {
		return 0
	}
	return t.BinWidths[chip][phase][sample]
}

// EpsilonTable holds the extra time inserted where the circular buffer
// wraps around, per chip and clock phase.
type EpsilonTable struct {
	Values [NumChips][NumPhases]float64
}

func (e *EpsilonTable) Epsilon(chip int, phase int) float64 {
	if e == nil || !validChipPhase(chip, phase) {
		return 0
	}
	return e.Values[chip][phase]
}

func validChipPhase(chip int, phase int) bool {
	return chip >= 0 && chip < NumChips && phase >= 0 && phase < NumPhases
}

func checkChipPhase(table string, chip int, phase int) error {
	if !validChipPhase(chip, phase) {
		return &ErrTableCapacity{Table: table, Index: fmt.Sprintf("chip %d phase %d", chip, phase)}
	}
	return nil
}

// LoadBinWidths reads records of the form "chip phase w0 ... w511". As with
// the other loaders the table is returned even on error.
func LoadBinWidths(filename string) (*TimebaseTable, error) {
	table := &TimebaseTable{}
	file, err := os.Open(filename)
	if err != nil {
		return table, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	tokens := newCalibTokenizer(file, filename)
	for {
		chip, ok, err := tokens.nextInt()
		if err != nil {
			return table, err
		}
		if !ok {
			break
		}
		phase, err := tokens.mustInt()
		if err != nil {
			return table, err
		}
		if err := checkChipPhase("binWidths", chip, phase); err != nil {
			return table, err
		}
		for samp := 0; samp < MaxSamples; samp++ {
			width, err := tokens.mustFloat()
			if err != nil {
				return table, err
			}
			table.BinWidths[chip][phase][samp] = width
		}
	}
	return table, nil
}

// LoadEpsilons reads records of the form "chip phase epsilon".
func LoadEpsilons(filename string) (*EpsilonTable, error) {
	table := &EpsilonTable{}
	file, err := os.Open(filename)
	if err != nil {
		return table, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	tokens := newCalibTokenizer(file, filename)
	for {
		chip, ok, err := tokens.nextInt()
		if err != nil {
			return table, err
		}
		if !ok {
			break
		}
		phase, err := tokens.mustInt()
		if err != nil {
			return table, err
		}
		epsilon, err := tokens.mustFloat()
		if err != nil {
			return table, err
		}
		if err := checkChipPhase("epsilon", chip, phase); err != nil {
			return table, err
		}
		table.Values[chip][phase] = epsilon
	}
	return table, nil
}

func BinWidthsPath(calibDir string) string {
	return filepath.Join(calibDir, BinWidthsFilename)
}

func EpsilonPath(calibDir string) string {
	return filepath.Join(calibDir, EpsilonFilename)
}

func InterleavePath(calibDir string) string {
	return filepath.Join(calibDir, InterleaveFilename)
}
