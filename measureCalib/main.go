package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	calibrator "github.com/ara-exp/calibrator_go/pkg"
)

var configuration calibrator.Configuration

var logger calibrator.SlogLogger

func init() {
	logger = calibrator.NewSlogLogger(os.Stdout, os.Stderr)
}

// measureCalib reads a raw file once and times calibration and writing for
// every calibration level.
func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	repeat := flag.Int("repeat", 1, "Times each level is measured")
	flag.Parse()

	var err error
	configuration, err = calibrator.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	calibrator.SetConfiguration(configuration)
	calibrator.SetLogger(logger)
	if configuration.Verbosity > 0 {
		calibrator.PrintConfiguration(configuration, logger)
	}

	calibDir := calibrator.ResolveCalibDir(configuration.CalibDir, os.Getenv)
	geometry, err := calibrator.LoadGeometry(configuration, calibDir)
	if err != nil {
		logger.Error(fmt.Errorf("Error loading geometry: %w", err).Error())
		os.Exit(1)
	}
	calib, err := calibrator.NewCalibrator(configuration, geometry)
	if err != nil {
		logger.Error(fmt.Errorf("Error loading calibration tables: %w", err).Error())
		os.Exit(1)
	}

	rawEvents, err := readAllEvents(configuration.FileIn, configuration.MaxEvents)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Events read: %d", len(rawEvents)), "main")

	for _, calType := range calibrator.AllCalTypes() {
		for i := 0; i < *repeat; i++ {
			if err := measure(calib, calType, rawEvents); err != nil {
				logger.Error(fmt.Errorf("%s: %w", calType, err).Error())
			}
		}
	}
}

func measure(calib *calibrator.Calibrator, calType calibrator.CalType, rawEvents []*calibrator.RawEvent) error {
	start := time.Now()
	events := make([]*calibrator.CalibratedEvent, len(rawEvents))
	for i, raw := range rawEvents {
		events[i] = calib.CalibrateEvent(raw, calType)
	}
	calibDuration := time.Since(start)

	start = time.Now()
	writer, err := calibrator.NewWriter(configuration.FileOut)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := writer.WriteEvent(event); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}
	writeDuration := time.Since(start)

	fileInfo, err := os.Stat(configuration.FileOut)
	if err != nil {
		return fmt.Errorf("error getting file info: %w", err)
	}
	message := fmt.Sprintf("(%s) calibration %d ms, writing %d ms, size %d bytes",
		calType, calibDuration.Milliseconds(), writeDuration.Milliseconds(), fileInfo.Size())
	logger.Info(message, "measure")
	return nil
}

func readAllEvents(filename string, maxEvents int) ([]*calibrator.RawEvent, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("Error opening file: %w", err)
	}
	defer file.Close()

	events := make([]*calibrator.RawEvent, 0)
	for len(events) < maxEvents {
		header, event, err := calibrator.ReadEventFromFile(file)
		if err == io.EOF {
			break
		}
		if err != nil {
			return events, fmt.Errorf("error reading event: %w", err)
		}
		if calibrator.ValidEvent(header) {
			events = append(events, event)
		}
	}
	return events, nil
}
