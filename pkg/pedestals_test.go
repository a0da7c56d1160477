package calibrator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPedestalsRoundTrip(t *testing.T) {
	table := &PedestalTable{}
	for chip := 0; chip < NumChips; chip++ {
		for chan_ := 0; chan_ < ChannelsPerChip; chan_++ {
			for samp := 0; samp < MaxSamples; samp++ {
				table.Values[chip][chan_][samp] = float64(chip*1000+chan_*100) + float64(samp%8)*0.25
			}
		}
	}
	filename := filepath.Join(t.TempDir(), DefaultPedestalFilename)
	require.NoError(t, WritePedestals(filename, table, 250))

	loaded, err := LoadPedestals(filename)
	require.NoError(t, err)
	assert.Equal(t, filename, loaded.Filename)
	assert.Equal(t, table.Values, loaded.Values)
	assert.Equal(t, 2101.75, loaded.Get(2, 1, 7))
}

func TestLoadPedestalsMissingFile(t *testing.T) {
	table, err := LoadPedestals(filepath.Join(t.TempDir(), "nope.dat"))
	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, table)
	assert.Equal(t, [NumChips][ChannelsPerChip][MaxSamples]float64{}, table.Values)
}

func TestLoadPedestalsNotGzip(t *testing.T) {
	filename := writeFile(t, t.TempDir(), "peds.dat", "plain text")
	table, err := LoadPedestals(filename)
	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))
	assert.NotNil(t, table)
}

func TestPedestalGetOutOfRange(t *testing.T) {
	table := &PedestalTable{}
	table.Values[0][0][0] = 3
	assert.Equal(t, 3.0, table.Get(0, 0, 0))
	assert.Equal(t, 0.0, table.Get(-1, 0, 0))
	assert.Equal(t, 0.0, table.Get(0, ChannelsPerChip, 0))
	assert.Equal(t, 0.0, table.Get(0, 0, MaxSamples))

	var nilTable *PedestalTable
	assert.Equal(t, 0.0, nilTable.Get(0, 0, 0))
}

func TestResolveCalibDir(t *testing.T) {
	env := map[string]string{}
	getenv := func(key string) string { return env[key] }

	assert.Equal(t, "calib", ResolveCalibDir("", getenv))
	env["ARA_UTIL_INSTALL_DIR"] = "/opt/ara"
	assert.Equal(t, filepath.Join("/opt/ara", "share", "araCalib"), ResolveCalibDir("", getenv))
	env["ARA_CALIB_DIR"] = "/data/calib"
	assert.Equal(t, "/data/calib", ResolveCalibDir("", getenv))
	assert.Equal(t, "/mine", ResolveCalibDir("/mine", getenv))
}

func TestResolvePedestalFile(t *testing.T) {
	env := map[string]string{}
	getenv := func(key string) string { return env[key] }

	assert.Equal(t, filepath.Join("calib", DefaultPedestalFilename), ResolvePedestalFile("", "calib", getenv))
	env["ARA_PEDESTAL_FILE"] = "/data/peds.dat"
	assert.Equal(t, "/data/peds.dat", ResolvePedestalFile("", "calib", getenv))
	assert.Equal(t, "/tmp/override.dat", ResolvePedestalFile("/tmp/override.dat", "calib", getenv))
}
