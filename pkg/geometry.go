package calibrator

import (
	"fmt"
	"strings"
)

// Geometry answers the channel mapping questions needed to build RF
// channels. Lookups outside the known channels never fail, they return 0
// lab channels, index -1 or zero delay.
type Geometry interface {
	NumLabChans(rfChan int, station StationId) int
	FirstLabChanIndex(rfChan int, station StationId) int
	SecondLabChanIndex(rfChan int, station StationId) int
	CableDelay(rfChan int, station StationId) float64
}

type LabChip int

const (
	LabChipA LabChip = iota
	LabChipB
	LabChipC
	LabChipUnknown LabChip = -1
)

func ParseLabChip(s string) LabChip {
	switch strings.TrimSpace(s) {
	case "kA":
		return LabChipA
	case "kB":
		return LabChipB
	case "kC":
		return LabChipC
	default:
		return LabChipUnknown
	}
}

func (c LabChip) String() string {
	switch c {
	case LabChipA:
		return "kA"
	case LabChipB:
		return "kB"
	case LabChipC:
		return "kC"
	default:
		return "Unknown"
	}
}

type AntPol int

const (
	PolVertical AntPol = iota
	PolHorizontal
	PolSurface
	numAntPols
	PolUnknown AntPol = -1
)

func ParseAntPol(s string) AntPol {
	switch strings.TrimSpace(s) {
	case "kVertical":
		return PolVertical
	case "kHorizontal":
		return PolHorizontal
	case "kSurface":
		return PolSurface
	default:
		return PolUnknown
	}
}

// Antennas per polarisation in the lookup table
const maxAntennasPerPol = 8

// AntennaInfo describes the RF channel of one antenna. LabChans are zero
// based channels within LabChip.
type AntennaInfo struct {
	ChanNum           int
	DaqChanNum        int
	HighPassFilterMhz float64
	LowPassFilterMhz  float64
	NumLabChans       int
	LabChip           LabChip
	LabChans          [2]int
	IsDiplexed        bool
	AntPolNum         int
	PolType           AntPol
	LocationName      string
	AntLocation       [3]float64
	CableDelay        float64
}

type stationInfo struct {
	antennas    [NumRFChannels]AntennaInfo
	antLookup   [numAntPols][maxAntennasPerPol]int
	numAntennas int
}

// StationGeometry is the Geometry read from the antenna database. It is
// filled once with AddStation and only read afterwards.
type StationGeometry struct {
	stations map[StationId]*stationInfo
}

func NewStationGeometry() *StationGeometry {
	return &StationGeometry{stations: make(map[StationId]*stationInfo)}
}

// AddStation stores the antennas of a station. Rows are placed by their one
// based ChanNum.
func (g *StationGeometry) AddStation(station StationId, antennas []AntennaInfo) error {
	info := &stationInfo{}
	for pol := range info.antLookup {
		for ant := range info.antLookup[pol] {
			info.antLookup[pol][ant] = -1
		}
	}
	for _, ant := range antennas {
		rfChan := ant.ChanNum - 1
		if rfChan < 0 || rfChan >= NumRFChannels {
			return &ErrTableCapacity{Table: "antenna " + station.String(), Index: fmt.Sprintf("chanNum %d", ant.ChanNum)}
		}
		info.antennas[rfChan] = ant
		info.numAntennas++
		if ant.PolType >= 0 && ant.PolType < numAntPols && ant.AntPolNum >= 0 && ant.AntPolNum < maxAntennasPerPol {
			info.antLookup[ant.PolType][ant.AntPolNum] = rfChan
		}
	}
	g.stations[station] = info
	return nil
}

func (g *StationGeometry) antenna(rfChan int, station StationId) *AntennaInfo {
	if g == nil || rfChan < 0 || rfChan >= NumRFChannels {
		return nil
	}
	info, ok := g.stations[station]
	if !ok {
		return nil
	}
	return &info.antennas[rfChan]
}

func (g *StationGeometry) Antenna(rfChan int, station StationId) (AntennaInfo, bool) {
	ant := g.antenna(rfChan, station)
	if ant == nil {
		return AntennaInfo{}, false
	}
	return *ant, true
}

func (g *StationGeometry) NumLabChans(rfChan int, station StationId) int {
	ant := g.antenna(rfChan, station)
	if ant == nil {
		return 0
	}
	return ant.NumLabChans
}

func (g *StationGeometry) FirstLabChanIndex(rfChan int, station StationId) int {
	return g.labChanIndex(rfChan, station, 0)
}

func (g *StationGeometry) SecondLabChanIndex(rfChan int, station StationId) int {
	return g.labChanIndex(rfChan, station, 1)
}

func (g *StationGeometry) labChanIndex(rfChan int, station StationId, which int) int {
	ant := g.antenna(rfChan, station)
	if ant == nil || ant.LabChip == LabChipUnknown || which >= ant.NumLabChans {
		return -1
	}
	labChan := ant.LabChans[which]
	if labChan < 0 || labChan >= ChannelsPerChip {
		return -1
	}
	return ChanIndex(int(ant.LabChip), labChan)
}

func (g *StationGeometry) CableDelay(rfChan int, station StationId) float64 {
	ant := g.antenna(rfChan, station)
	if ant == nil {
		return 0
	}
	return ant.CableDelay
}

// RFChanByPolAndAnt returns the RF channel of antenna antNum with the
// given polarisation, or -1.
func (g *StationGeometry) RFChanByPolAndAnt(pol AntPol, antNum int, station StationId) int {
	if g == nil || pol < 0 || pol >= numAntPols || antNum < 0 || antNum >= maxAntennasPerPol {
		return -1
	}
	info, ok := g.stations[station]
	if !ok {
		return -1
	}
	return info.antLookup[pol][antNum]
}
