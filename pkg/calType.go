package calibrator

import (
	"encoding/json"
	"fmt"
)

type CalTypeCode int

const (
	NoCalib CalTypeCode = iota
	JustUnwrap
	JustPed
	ADC
	VoltageTime
	FirstCalib
	FirstCalibPlusCables
	SecondCalib
	SecondCalibPlusCables
)

var calTypeStrings = []string{
	"no-calib",
	"just-unwrap",
	"just-ped",
	"adc",
	"voltage-time",
	"first-calib",
	"first-calib-plus-cables",
	"second-calib",
	"second-calib-plus-cables",
}

// Capabilities lists the processing stages a calibration level enables.
// Levels must be queried through these flags, not through their order.
type Capabilities struct {
	BinWidthCalib   bool
	InterleaveCalib bool
	ClockAlignment  bool
	CableDelays     bool
}

var calTypeCapabilities = map[CalTypeCode]Capabilities{
	FirstCalib: {
		BinWidthCalib:   true,
		InterleaveCalib: true,
	},
	FirstCalibPlusCables: {
		BinWidthCalib:   true,
		InterleaveCalib: true,
		CableDelays:     true,
	},
	SecondCalib: {
		BinWidthCalib:   true,
		InterleaveCalib: true,
		ClockAlignment:  true,
	},
	SecondCalibPlusCables: {
		BinWidthCalib:   true,
		InterleaveCalib: true,
		ClockAlignment:  true,
		CableDelays:     true,
	},
}

type CalType struct {
	Name string
	Code CalTypeCode
}

func AllCalTypes() []CalType {
	types := make([]CalType, len(calTypeStrings))
	for i, name := range calTypeStrings {
		types[i] = CalType{Name: name, Code: CalTypeCode(i)}
	}
	return types
}

func (c CalType) Capabilities() Capabilities {
	return calTypeCapabilities[c.Code]
}

func (c CalType) HasBinWidthCalib() bool {
	return c.Capabilities().BinWidthCalib
}

func (c CalType) HasInterleaveCalib() bool {
	return c.Capabilities().InterleaveCalib
}

func (c CalType) HasClockAlignment() bool {
	return c.Capabilities().ClockAlignment
}

func (c CalType) HasCableDelays() bool {
	return c.Capabilities().CableDelays
}

func (c CalType) String() string {
	if c.Code < NoCalib || c.Code > SecondCalibPlusCables {
		return "UNKNOWN"
	}
	return calTypeStrings[c.Code]
}

func ParseCalType(s string) (CalType, error) {
	for i, v := range calTypeStrings {
		if v == s {
			return CalType{Name: s, Code: CalTypeCode(i)}, nil
		}
	}
	return CalType{}, fmt.Errorf("invalid CalType: %s", s)
}

func (c CalType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CalType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(s))
}

// UnmarshalText lets TOML configurations name the level as a plain string.
func (c *CalType) UnmarshalText(text []byte) error {
	parsed, err := ParseCalType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
