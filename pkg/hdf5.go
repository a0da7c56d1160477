package calibrator

import (
	"github.com/jmbenlloch/go-hdf5"
)

type EventDataHDF5 struct {
	evt_number int32
	unix_time  uint64
}

type RunInfoHDF5 struct {
	station  int32
	cal_type string
}

const STRLEN = 32

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

// Chunk sizes cannot exceed fixed dimensions
func chunkSize(n int, max int) uint {
	if n < max {
		return uint(n)
	}
	return uint(max)
}

func create3dArray(group *hdf5.Group, name string, dtype *hdf5.Datatype, nChannels int, nSamples int) (*hdf5.Dataset, error) {
	dimsArray := []uint{0, 0, 0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(nChannels), uint(nSamples)}
	chunks := []uint{1, chunkSize(nChannels, 50), uint(nSamples)}
	return createArray(group, name, dtype, dimsArray, maxDimsArray, chunks)
}

func create2dArray(group *hdf5.Group, name string, dtype *hdf5.Datatype, nChannels int) (*hdf5.Dataset, error) {
	dimsArray := []uint{0, 0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(nChannels)}
	chunks := []uint{1, chunkSize(nChannels, 32768)}
	return createArray(group, name, dtype, dimsArray, maxDimsArray, chunks)
}

func createArray(group *hdf5.Group, name string, dtype *hdf5.Datatype, dims []uint, maxDims []uint, chunks []uint) (*hdf5.Dataset, error) {
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.CompressionLevel)

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()
	plist.SetChunk([]uint{32768})
	plist.SetDeflate(configuration.CompressionLevel)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, evtCounter int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, evtCounter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int) error {
	length := uint(len(*data))
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	eventsInFile := uint(evtCounter)
	dataset.Resize([]uint{eventsInFile + length})
	filespace := dataset.Space()
	defer filespace.Close()

	if err := filespace.SelectHyperslab([]uint{eventsInFile}, nil, []uint{length}, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func write3dArray[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int, nChannels int, nSamples int) error {
	// extend
	newsize := []uint{uint(evtCounter) + 1, uint(nChannels), uint(nSamples)}
	dataset.Resize(newsize)
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(evtCounter), 0, 0}
	count := []uint{1, uint(nChannels), uint(nSamples)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()
	return dataset.WriteSubset(data, dataspace, filespace)
}

func write2dArray[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int, nChannels int) error {
	// extend
	newsize := []uint{uint(evtCounter) + 1, uint(nChannels)}
	dataset.Resize(newsize)
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(evtCounter), 0}
	count := []uint{1, uint(nChannels)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()
	return dataset.WriteSubset(data, dataspace, filespace)
}
