package main

import (
	"fmt"
	"io"

	calibrator "github.com/ara-exp/calibrator_go/pkg"
)

func worker(id int, calib *calibrator.Calibrator, calType calibrator.CalType,
	jobs <-chan *calibrator.RawEvent, results chan<- *calibrator.CalibratedEvent) {
	for raw := range jobs {
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Worker %d processing event %d", id, raw.EventNumber)
			logger.Info(message, "worker")
		}
		results <- calibrateEvent(id, calib, calType, raw)
	}
}

// calibrateEvent keeps a worker alive when one event panics. The event is
// returned flagged as failed.
func calibrateEvent(id int, calib *calibrator.Calibrator, calType calibrator.CalType,
	raw *calibrator.RawEvent) (event *calibrator.CalibratedEvent) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("worker %d recovered from panic on event %d: %v", id, raw.EventNumber, r)
			logger.Error(errMessage.Error())
			event = &calibrator.CalibratedEvent{
				EventNumber: raw.EventNumber,
				UnixTime:    raw.UnixTime,
				StationId:   raw.StationId,
				CalType:     calType,
				Error:       true,
			}
		}
	}()
	return calib.CalibrateEvent(raw, calType)
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- *calibrator.RawEvent) {
	defer close(jobs)
	for {
		event, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			return
		}
		jobs <- event
	}
}

func processWorkerResults(results <-chan *calibrator.CalibratedEvent, writer *calibrator.Writer) int {
	evtsProcessed := 0
	for event := range results {
		if writer != nil {
			if err := calibrator.ProcessCalibratedEvent(event, configuration, writer); err != nil {
				logger.Error(err.Error())
			}
		}
		evtsProcessed++
	}
	return evtsProcessed
}
