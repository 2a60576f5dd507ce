package h5

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

const STRLEN = 32

// The binding names compound members after the raw struct tag, or the
// field name when there is none. Fields ending in Str are stored as fixed
// length strings of STRLEN bytes.

type TagHDF5 struct {
	nameStr  [STRLEN]byte `name`
	valueStr [STRLEN]byte `value`
}

type ParameterHDF5 struct {
	nameStr [STRLEN]byte `name`
	value   int32
}

type EventHDF5 struct {
	eventid       int32
	ntpmthits     int32
	nbpmthits     int32
	ntvetopmthits int32
	nbvetopmthits int32
	etot          float32
	nsteps        int32
	typeStr       [STRLEN]byte `type_pri`
	e_pri         float32
	xp_pri        float32
	yp_pri        float32
	zp_pri        float32
}

type StepHDF5 struct {
	eventid       int32
	trackid       int32
	typeStr       [STRLEN]byte `type`
	parentid      int32
	parenttypeStr [STRLEN]byte `parenttype`
	creaprocStr   [STRLEN]byte `creaproc`
	edprocStr     [STRLEN]byte `edproc`
	xp            float32
	yp            float32
	zp            float32
	ed            float32
	ke            float32
	time          float64
}

// convertToHdf5String copies s into a fixed length string. It reports
// whether s had to be cut to fit.
func convertToHdf5String(s string) ([STRLEN]byte, bool) {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray, len(s) > STRLEN
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, err
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

func newPropList(chunks []uint, compression Compression) (*hdf5.PropList, error) {
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	if err := plist.SetChunk(chunks); err != nil {
		plist.Close()
		return nil, err
	}

	// Set compression level
	if compression.Level > 0 {
		if err := plist.SetDeflate(compression.Level); err != nil {
			plist.Close()
			return nil, err
		}
	}
	return plist, nil
}

func create2dArray(group *hdf5.Group, name string, nSensors int, compression Compression) (*hdf5.Dataset, error) {
	dimsArray := []uint{0, uint(nSensors)}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(nSensors)}
	chunks := []uint{compression.chunkRows(), uint(nSensors)}

	fileSpace, err := hdf5.CreateSimpleDataspace(dimsArray, maxDimsArray)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := newPropList(chunks, compression)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_INT32, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compression Compression) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	chunks := []uint{compression.chunkRows()}
	plist, err := newPropList(chunks, compression)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer dtype.Close()

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends the rows after the first nRows rows of the
// table.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, nRows int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}

	// extend
	rowsInFile := uint(nRows)
	newsize := []uint{rowsInFile + length}
	if err := dataset.Resize(newsize); err != nil {
		dataspace.Close()
		return err
	}
	filespace := dataset.Space()

	start := []uint{rowsInFile}
	count := []uint{length}
	err = filespace.SelectHyperslab(start, nil, count, nil)
	if err == nil {
		err = dataset.WriteSubset(data, dataspace, filespace)
	}
	return errors.Join(err, dataspace.Close(), filespace.Close())
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, nRows int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, nRows)
}

func write2dArray(dataset *hdf5.Dataset, data *[]int32, evtCounter int, nSensors int) error {
	// extend
	newsize := []uint{uint(evtCounter) + 1, uint(nSensors)}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()

	start := []uint{uint(evtCounter), 0}
	count := []uint{1, uint(nSensors)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		filespace.Close()
		return err
	}

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		filespace.Close()
		return fmt.Errorf("error creating memory space: %w", err)
	}

	err = dataset.WriteSubset(data, dataspace, filespace)
	return errors.Join(err, dataspace.Close(), filespace.Close())
}
