package main

import (
	"fmt"
	"io"

	calibrator "github.com/ara-exp/calibrator_go/pkg"
)

type FileReader struct {
	File     io.Reader
	EvtCount int
}

func NewFileReader(file io.Reader) *FileReader {
	return &FileReader{File: file, EvtCount: -1}
}

func (f *FileReader) getNextEvent() (*calibrator.RawEvent, error) {
	for {
		header, event, err := calibrator.ReadEventFromFile(f.File)
		if err != nil {
			return nil, err
		}
		if !calibrator.ValidEvent(header) {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping invalid event %d (station %d, %d channels)",
					header.EventNumber, header.StationId, header.NumChannels)
				logger.Info(message, "fileReader")
			}
			continue
		}
		f.EvtCount++
		if f.EvtCount >= configuration.Skip+configuration.MaxEvents {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return nil, io.EOF
		}
		if f.EvtCount < configuration.Skip {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping event %d with number %d", f.EvtCount, header.EventNumber)
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Reading event %d with number %d", f.EvtCount, header.EventNumber)
			logger.Info(message, "fileReader")
		}
		return event, nil
	}
}
