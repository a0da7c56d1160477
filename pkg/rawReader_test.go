package calibrator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawEventRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	first := newRawEvent(11)
	second := newRawEvent(12)
	second.StationId = ARA_STATION1
	second.UnixTimeUs = 999
	require.NoError(t, WriteEventToFile(&buf, first))
	require.NoError(t, WriteEventToFile(&buf, second))

	header, event, err := ReadEventFromFile(&buf)
	require.NoError(t, err)
	assert.True(t, ValidEvent(header))
	assert.Equal(t, uint16(NumDigitizedChannels), header.NumChannels)
	assert.Equal(t, first, event)

	_, event, err = ReadEventFromFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, second, event)

	_, _, err = ReadEventFromFile(&buf)
	assert.Equal(t, io.EOF, err)
}

func TestReadEventTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEventToFile(&buf, newRawEvent(1)))
	data := buf.Bytes()

	_, _, err := ReadEventFromFile(bytes.NewReader(data[:len(data)-100]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, _, err = ReadEventFromFile(bytes.NewReader(data[:10]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReadEventSparseChannels(t *testing.T) {
	var buf bytes.Buffer
	header := RawEventHeaderStruct{
		EventNumber: 5,
		StationId:   uint16(ARA_TESTBED),
		NumChannels: 2,
	}
	header.EventSize = uint32(rawHeaderSize + 2*rawChannelSize + 8)
	channels := []RawChannel{
		newRawChannel(17, 3, 4, 0),
		newRawChannel(NumDigitizedChannels+3, 3, 4, 0),
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, channels))
	buf.Write(make([]byte, 8))
	require.NoError(t, WriteEventToFile(&buf, newRawEvent(6)))

	_, event, err := ReadEventFromFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, channels[0], event.Chan[17])
	assert.Equal(t, RawChannel{}, event.Chan[0])
	assert.False(t, event.Missing[17])
	assert.True(t, event.Missing[0])
	assert.True(t, event.Missing[NumDigitizedChannels-1])

	// Padding was skipped
	_, event, err = ReadEventFromFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), event.EventNumber)
}

func TestWriteEventSkipsMissingChannels(t *testing.T) {
	raw := newRawEvent(3)
	raw.Missing[4] = true
	raw.Missing[20] = true

	var buf bytes.Buffer
	require.NoError(t, WriteEventToFile(&buf, raw))
	header, event, err := ReadEventFromFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(NumDigitizedChannels-2), header.NumChannels)
	assert.Equal(t, raw.Missing, event.Missing)
	assert.Equal(t, raw.Chan[5], event.Chan[5])
}

func TestValidEvent(t *testing.T) {
	assert.True(t, ValidEvent(RawEventHeaderStruct{StationId: uint16(ARA_STATION1), NumChannels: 1}))
	assert.False(t, ValidEvent(RawEventHeaderStruct{StationId: uint16(ARA_TESTBED)}))
	assert.False(t, ValidEvent(RawEventHeaderStruct{StationId: 7, NumChannels: 27}))
}

func TestRawChannelFlags(t *testing.T) {
	ch := RawChannel{ChanId: 22, ChipIdFlag: 0x3c}
	assert.Equal(t, 2, ch.Chip())
	assert.Equal(t, 4, ch.Channel())
	assert.True(t, ch.HitbusWrap())
	assert.Equal(t, 3, ch.HitbusExtra())
	assert.Equal(t, 1, ch.RawPhase())

	ch.ChipIdFlag = 0
	assert.False(t, ch.HitbusWrap())
	assert.Equal(t, 0, ch.HitbusExtra())
	assert.Equal(t, 0, ch.RawPhase())
}
