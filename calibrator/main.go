package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	calibrator "github.com/ara-exp/calibrator_go/pkg"
)

var configuration calibrator.Configuration

var (
	logger         calibrator.SlogLogger
	VerbosityLevel int
)

func init() {
	logger = calibrator.NewSlogLogger(os.Stdout, os.Stderr)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path (JSON, or TOML with .toml extension)")
	calTypeName := flag.String("cal-type", "", "Calibration level, overrides the configuration file")
	flag.Parse()

	var err error
	configuration, err = calibrator.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *calTypeName != "" {
		configuration.CalType, err = calibrator.ParseCalType(*calTypeName)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}
	calibrator.SetConfiguration(configuration)
	calibrator.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		calibrator.PrintConfiguration(configuration, logger)
	}

	calib, err := setupCalibrator(configuration)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer file.Close()

	var writer *calibrator.Writer
	if configuration.WriteData {
		writer, err = calibrator.NewWriter(configuration.FileOut)
		if err != nil {
			message := fmt.Errorf("Error creating output file: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	start := time.Now()
	fileReader := NewFileReader(file)
	jobs := make(chan *calibrator.RawEvent, 100)
	results := make(chan *calibrator.CalibratedEvent, 100)

	numWorkers := max(configuration.NumWorkers, 1)
	var wg sync.WaitGroup
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(id, calib, configuration.CalType, jobs, results)
		}(w)
	}
	go sendEventsToWorkers(fileReader, jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	evtsProcessed := processWorkerResults(results, writer)

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error(err.Error())
		}
	}
	duration := time.Since(start)
	message := fmt.Sprintf("Events calibrated: %d in %d ms", evtsProcessed, duration.Milliseconds())
	logger.Info(message, "main")
}

// setupCalibrator loads the geometry and the calibration tables. Only
// malformed tables or an unusable database are fatal.
func setupCalibrator(config calibrator.Configuration) (*calibrator.Calibrator, error) {
	calibDir := calibrator.ResolveCalibDir(config.CalibDir, os.Getenv)
	geometry, err := calibrator.LoadGeometry(config, calibDir)
	if err != nil {
		return nil, fmt.Errorf("Error loading geometry: %w", err)
	}
	calib, err := calibrator.NewCalibrator(config, geometry)
	if err != nil {
		return nil, fmt.Errorf("Error loading calibration tables: %w", err)
	}
	// Read pedestals now instead of inside the first worker
	calib.Pedestals()
	return calib, nil
}
