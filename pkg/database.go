package calibrator

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

const DefaultGeometryDB = "AntennaInfo.sqlite"

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// OpenSqliteDatabase opens an existing sqlite file. The driver would
// silently create a missing file, so existence is checked first.
func OpenSqliteDatabase(filename string) (*sqlx.DB, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	db, err := sqlx.Connect("sqlite", filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return db, nil
}

// OpenGeometryDatabase connects to the antenna database selected in the
// configuration: the sqlite file (by default AntennaInfo.sqlite in the
// calibration directory) or the MySQL server.
func OpenGeometryDatabase(config Configuration, calibDir string) (*sqlx.DB, error) {
	switch config.GeomDriver {
	case "mysql":
		db, err := ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
		if err != nil {
			return nil, fmt.Errorf("error connecting to geometry database: %w", err)
		}
		return db, nil
	case "sqlite", "":
		filename := config.GeomDB
		if filename == "" {
			filename = filepath.Join(calibDir, DefaultGeometryDB)
		}
		return OpenSqliteDatabase(filename)
	default:
		return nil, fmt.Errorf("unknown geometry driver %q", config.GeomDriver)
	}
}

type AntennaInfoRow struct {
	ChanNum           int     `db:"chanNum"`
	DaqChanNum        int     `db:"daqChanNum"`
	HighPassFilterMhz float64 `db:"highPassFilterMhz"`
	LowPassFilterMhz  float64 `db:"lowPassFilterMhz"`
	NumLabChans       int     `db:"numLabChans"`
	LabChip           string  `db:"labChip"`
	LabChans0         int     `db:"labChans0"`
	LabChans1         int     `db:"labChans1"`
	IsDiplexed        int     `db:"isDiplexed"`
	AntPolNum         int     `db:"antPolNum"`
	PolType           string  `db:"polType"`
	LocationName      string  `db:"locationName"`
	AntLocation0      float64 `db:"antLocation0"`
	AntLocation1      float64 `db:"antLocation1"`
	AntLocation2      float64 `db:"antLocation2"`
	CableDelay        float64 `db:"cableDelay"`
}

// Lab channels are one based in the database
func (r AntennaInfoRow) AntennaInfo() AntennaInfo {
	return AntennaInfo{
		ChanNum:           r.ChanNum,
		DaqChanNum:        r.DaqChanNum,
		HighPassFilterMhz: r.HighPassFilterMhz,
		LowPassFilterMhz:  r.LowPassFilterMhz,
		NumLabChans:       r.NumLabChans,
		LabChip:           ParseLabChip(r.LabChip),
		LabChans:          [2]int{r.LabChans0 - 1, r.LabChans1 - 1},
		IsDiplexed:        r.IsDiplexed != 0,
		AntPolNum:         r.AntPolNum,
		PolType:           ParseAntPol(r.PolType),
		LocationName:      r.LocationName,
		AntLocation:       [3]float64{r.AntLocation0, r.AntLocation1, r.AntLocation2},
		CableDelay:        r.CableDelay,
	}
}

func getAntennasFromDB(db *sqlx.DB, station StationId) ([]AntennaInfo, error) {
	query := "SELECT chanNum, daqChanNum, highPassFilterMhz, lowPassFilterMhz, numLabChans, labChip, " +
		"labChans0, labChans1, isDiplexed, antPolNum, polType, locationName, " +
		"antLocation0, antLocation1, antLocation2, cableDelay FROM %s ORDER BY chanNum"
	query = fmt.Sprintf(query, station.String())

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading %v antenna info from database", station)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows := []AntennaInfoRow{}
	if err := db.Select(&rows, query); err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	antennas := make([]AntennaInfo, 0, len(rows))
	for _, row := range rows {
		antennas = append(antennas, row.AntennaInfo())
	}
	return antennas, nil
}

// LoadGeometryFromDB reads the antenna tables of the given stations.
func LoadGeometryFromDB(db *sqlx.DB, stations ...StationId) (*StationGeometry, error) {
	geom := NewStationGeometry()
	for _, station := range stations {
		antennas, err := getAntennasFromDB(db, station)
		if err != nil {
			errMessage := fmt.Errorf("error getting %v antennas from database: %w", station, err)
			logger.Error(errMessage.Error())
			return geom, errMessage
		}
		if err := geom.AddStation(station, antennas); err != nil {
			return geom, err
		}
	}
	return geom, nil
}

// LoadGeometry opens the configured antenna database and reads every known
// station. A missing sqlite file or station table is logged and leaves that
// geometry empty, so RF channels come out empty but digitized channels are
// still calibrated.
func LoadGeometry(config Configuration, calibDir string) (*StationGeometry, error) {
	geom := NewStationGeometry()
	db, err := OpenGeometryDatabase(config, calibDir)
	if err = bestEffort(err); err != nil {
		return geom, err
	}
	if db == nil {
		return geom, nil
	}
	defer db.Close()

	for _, station := range []StationId{ARA_TESTBED, ARA_STATION1} {
		antennas, err := getAntennasFromDB(db, station)
		if err != nil {
			logger.Error(fmt.Sprintf("no antenna info for %v: %v", station, err))
			continue
		}
		if err := geom.AddStation(station, antennas); err != nil {
			return geom, err
		}
	}
	return geom, nil
}
