package calibrator

import (
	"errors"
	"fmt"
)

// CalibrationTables groups the read-only tables used to calibrate events.
// A value is shared by every worker, none of the tables is ever written
// after loading.
type CalibrationTables struct {
	Pedestals  *PedestalTable
	Timebase   *TimebaseTable
	Epsilon    *EpsilonTable
	Interleave *InterleaveTable
}

// LoadCalibrationTables reads the bin width, epsilon and interleave files
// from calibDir. Missing files are logged and leave a zero table behind;
// malformed files are returned as errors.
func LoadCalibrationTables(calibDir string) (CalibrationTables, error) {
	var tables CalibrationTables
	var err error

	tables.Timebase, err = LoadBinWidths(BinWidthsPath(calibDir))
	if err = bestEffort(err); err != nil {
		return tables, fmt.Errorf("error loading bin widths: %w", err)
	}
	tables.Epsilon, err = LoadEpsilons(EpsilonPath(calibDir))
	if err = bestEffort(err); err != nil {
		return tables, fmt.Errorf("error loading epsilons: %w", err)
	}
	tables.Interleave, err = LoadInterleave(InterleavePath(calibDir))
	if err = bestEffort(err); err != nil {
		return tables, fmt.Errorf("error loading interleave offsets: %w", err)
	}

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Calibration tables read from %s", calibDir), "tables")
	}
	return tables, nil
}

// bestEffort swallows (and logs) errors caused by unreadable files.
func bestEffort(err error) error {
	if err == nil {
		return nil
	}
	var openErr *ErrOpenFile
	if errors.As(err, &openErr) {
		logger.Error(fmt.Sprintf("%s, using zeroed values", err.Error()))
		return nil
	}
	return err
}
