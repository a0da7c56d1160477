package calibrator

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrParseCalib represents a malformed line in a calibration text file.
type ErrParseCalib struct {
	Filename string
	Line     int
	Err      error
}

func (e *ErrParseCalib) Error() string {
	return fmt.Sprintf("error parsing %q line %d: %v", e.Filename, e.Line, e.Err)
}

func (e *ErrParseCalib) Unwrap() error {
	return e.Err
}

// ErrTableCapacity is returned when a calibration file addresses an entry
// outside the compiled-in table dimensions.
type ErrTableCapacity struct {
	Table string
	Index string
}

func (e *ErrTableCapacity) Error() string {
	return fmt.Sprintf("table %s has no entry for %s", e.Table, e.Index)
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}
