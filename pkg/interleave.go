package calibrator

import (
	"fmt"
	"os"
)

// InterleaveTable holds, per RF channel, the time offset of its second
// digitized channel relative to the first one.
type InterleaveTable struct {
	Values [NumRFChannels]float64
}

func (t *InterleaveTable) Offset(rfChan int) float64 {
	if t == nil || rfChan < 0 || rfChan >= NumRFChannels {
		return 0
	}
	return t.Values[rfChan]
}

// LoadInterleave reads records of the form "chip chan offset". The RF
// channel is chan + 4*chip.
func LoadInterleave(filename string) (*InterleaveTable, error) {
	table := &InterleaveTable{}
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
		chan_, err := tokens.mustInt()
		if err != nil {
			return table, err
		}
		offset, err := tokens.mustFloat()
		if err != nil {
			return table, err
		}
		rfChan := chan_ + 4*chip
		if chip < 0 || chan_ < 0 || rfChan >= NumRFChannels {
			return table, &ErrTableCapacity{Table: "interleave", Index: fmt.Sprintf("chip %d chan %d", chip, chan_)}
		}
		table.Values[rfChan] = offset
	}
	return table, nil
}
