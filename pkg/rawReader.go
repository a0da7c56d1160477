package calibrator

import (
	"encoding/binary"
	"fmt"
	"io"
)

// RawEventHeaderStruct starts every event of a raw file. EventSize counts
// the header plus all the channel records that follow it.
type RawEventHeaderStruct struct {
	EventSize   uint32
	EventNumber uint32
	UnixTime    uint64
	UnixTimeUs  uint32
	StationId   uint16
	NumChannels uint16
}

var (
	rawHeaderSize  = binary.Size(RawEventHeaderStruct{})
	rawChannelSize = binary.Size(RawChannel{})
)

func ValidEvent(header RawEventHeaderStruct) bool {
	known := StationId(header.StationId) == ARA_TESTBED || StationId(header.StationId) == ARA_STATION1
	return known && header.NumChannels > 0
}

// ReadEventFromFile reads the next event. io.EOF is returned only when the
// stream ends cleanly between events. Channel records with a chanId beyond
// the digitized channels are dropped and trailing bytes announced by
// EventSize are skipped. Digitized channels without a record are flagged in
// Missing.
func ReadEventFromFile(r io.Reader) (RawEventHeaderStruct, *RawEvent, error) {
	var header RawEventHeaderStruct
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, nil, err
	}

	event := &RawEvent{
		EventNumber: header.EventNumber,
		UnixTime:    header.UnixTime,
		UnixTimeUs:  header.UnixTimeUs,
		StationId:   StationId(header.StationId),
	}
	for i := range event.Missing {
		event.Missing[i] = true
	}

	var channel RawChannel
	for i := 0; i < int(header.NumChannels); i++ {
		if err := binary.Read(r, binary.LittleEndian, &channel); err != nil {
			return header, nil, fmt.Errorf("error reading channel %d of event %d: %w", i, header.EventNumber, noEOF(err))
		}
		if int(channel.ChanId) >= NumDigitizedChannels {
			if configuration.Verbosity > 1 {
				message := fmt.Sprintf("Event %d: ignoring channel with chanId %d", header.EventNumber, channel.ChanId)
				logger.Info(message, "rawReader")
			}
			continue
		}
		event.Chan[channel.ChanId] = channel
		event.Missing[channel.ChanId] = false
	}

	expected := rawHeaderSize + int(header.NumChannels)*rawChannelSize
	if extra := int64(header.EventSize) - int64(expected); extra > 0 {
		if _, err := io.CopyN(io.Discard, r, extra); err != nil {
			return header, nil, fmt.Errorf("error skipping payload of event %d: %w", header.EventNumber, noEOF(err))
		}
	}
	return header, event, nil
}

// WriteEventToFile writes an event with all its digitized channels but the
// missing ones.
func WriteEventToFile(w io.Writer, event *RawEvent) error {
	channels := make([]RawChannel, 0, NumDigitizedChannels)
	for i, ch := range event.Chan {
		if !event.Missing[i] {
			channels = append(channels, ch)
		}
	}
	header := RawEventHeaderStruct{
		EventSize:   uint32(rawHeaderSize + len(channels)*rawChannelSize),
		EventNumber: event.EventNumber,
		UnixTime:    event.UnixTime,
		UnixTimeUs:  event.UnixTimeUs,
		StationId:   uint16(event.StationId),
		NumChannels: uint16(len(channels)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("error writing event header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, channels); err != nil {
		return fmt.Errorf("error writing event channels: %w", err)
	}
	return nil
}

// A stream ending inside an event is truncated, not finished
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
