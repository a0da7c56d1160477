package calibrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	MaxEvents        int     `json:"max_events" toml:"max_events"`
	Verbosity        int     `json:"verbosity" toml:"verbosity"`
	FileIn           string  `json:"file_in" toml:"file_in"`
	FileOut          string  `json:"file_out" toml:"file_out"`
	CalType          CalType `json:"cal_type" toml:"cal_type"`
	CalibDir         string  `json:"calib_dir" toml:"calib_dir"`
	PedestalFile     string  `json:"pedestal_file" toml:"pedestal_file"`
	Discard          bool    `json:"discard" toml:"discard"`
	Skip             int     `json:"skip" toml:"skip"`
	GeomDriver       string  `json:"geom_driver" toml:"geom_driver"`
	GeomDB           string  `json:"geom_db" toml:"geom_db"`
	Host             string  `json:"host" toml:"host"`
	User             string  `json:"user" toml:"user"`
	Passwd           string  `json:"pass" toml:"pass"`
	DBName           string  `json:"dbname" toml:"dbname"`
	NumWorkers       int     `json:"num_workers" toml:"num_workers"`
	WriteData        bool    `json:"write_data" toml:"write_data"`
	CompressionLevel int     `json:"compression_level" toml:"compression_level"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	var config Configuration
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.CalType = CalType{Name: "second-calib-plus-cables", Code: SecondCalibPlusCables}
	config.Discard = true
	config.Skip = 0
	config.GeomDriver = "sqlite"
	config.NumWorkers = 1
	config.WriteData = true
	config.CompressionLevel = 4
	return config
}

// LoadConfiguration reads a JSON configuration file, or a TOML one when
// the file name ends in .toml, on top of the default values.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error decoding configuration %q: %w", filename, err)
	}
	return config, nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Calibration type: %s", config.CalType), "config")
	logger.Info(fmt.Sprintf("Calibration dir: %s", config.CalibDir), "config")
	logger.Info(fmt.Sprintf("Pedestal file: %s", config.PedestalFile), "config")
	logger.Info(fmt.Sprintf("Geometry driver: %s", config.GeomDriver), "config")
	logger.Info(fmt.Sprintf("Geometry DB: %s", config.GeomDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
}
