package h5

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	tpcsim "github.com/next-exp/tpcsim_go/pkg"
)

// Writer stores the run in an HDF5 file:
//
//	/Run/tags         name, value
//	/Run/parameters   name, value
//	/events/events    one row per persisted event
//	/events/pmthits   [event, pmt] hit counts
//	/events/steps     one row per step, keyed by eventid
type Writer struct {
	File        *hdf5.File
	Filename    string
	RunGroup    *hdf5.Group
	EventsGroup *hdf5.Group
	TagsTable   *hdf5.Dataset
	ParamsTable *hdf5.Dataset
	EventTable  *hdf5.Dataset
	StepsTable  *hdf5.Dataset
	PmtHits     *hdf5.Dataset
	NbPmts      int
	EvtCounter  int
	StepCounter int

	compression Compression
	truncated   map[string]bool
	closed      bool
}

func NewWriter(filename string, nbPmts int, compression Compression) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	file, err := openFile(filename)
	if err != nil {
		return nil, &tpcsim.ErrOpenFile{Filename: filename, Err: err}
	}

	w := &Writer{
		File:        file,
		Filename:    filename,
		NbPmts:      nbPmts,
		compression: compression,
		truncated:   make(map[string]bool),
	}
	if err := w.createLayout(); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return w, nil
}

func (w *Writer) createLayout() error {
	var err error
	if w.RunGroup, err = createGroup(w.File, "Run"); err != nil {
		return err
	}
	if w.EventsGroup, err = createGroup(w.File, "events"); err != nil {
		return err
	}
	if w.TagsTable, err = createTable(w.RunGroup, "tags", TagHDF5{}, w.compression); err != nil {
		return err
	}
	if w.ParamsTable, err = createTable(w.RunGroup, "parameters", ParameterHDF5{}, w.compression); err != nil {
		return err
	}
	if w.EventTable, err = createTable(w.EventsGroup, "events", EventHDF5{}, w.compression); err != nil {
		return err
	}
	if w.StepsTable, err = createTable(w.EventsGroup, "steps", StepHDF5{}, w.compression); err != nil {
		return err
	}
	if w.PmtHits, err = create2dArray(w.EventsGroup, "pmthits", w.NbPmts, w.compression); err != nil {
		return err
	}
	return nil
}

func (w *Writer) WriteHeader(header tpcsim.RunHeader) error {
	tags := make([]TagHDF5, len(header.Tags))
	for i, tag := range header.Tags {
		tags[i] = TagHDF5{
			nameStr:  w.hdf5String("tags.name", tag.Name),
			valueStr: w.hdf5String("tags.value", tag.Value),
		}
	}
	if err := writeArrayToTable(w.TagsTable, &tags, 0); err != nil {
		return &ErrWriteTable{TableName: "tags", Err: err}
	}

	param := ParameterHDF5{
		nameStr: w.hdf5String("parameters.name", "nbevents"),
		value:   int32(header.NbEvents),
	}
	if err := writeEntryToTable(w.ParamsTable, param, 0); err != nil {
		return &ErrWriteTable{TableName: "parameters", Err: err}
	}
	return nil
}

func (w *Writer) WriteEvent(record *tpcsim.EventRecord) error {
	if len(record.PmtHits) != w.NbPmts {
		return fmt.Errorf("event %d has %d pmt counts, table has %d", record.EventID, len(record.PmtHits), w.NbPmts)
	}

	evt := EventHDF5{
		eventid:       int32(record.EventID),
		ntpmthits:     int32(record.NbTopPmtHits),
		nbpmthits:     int32(record.NbBottomPmtHits),
		ntvetopmthits: int32(record.NbTopVetoHits),
		nbvetopmthits: int32(record.NbBottomVetoHits),
		etot:          float32(record.TotalEnergy),
		nsteps:        int32(record.NbSteps),
		typeStr:       w.hdf5String("type_pri", record.PrimaryType),
		e_pri:         float32(record.PrimaryEnergy),
		xp_pri:        float32(record.PrimaryX),
		yp_pri:        float32(record.PrimaryY),
		zp_pri:        float32(record.PrimaryZ),
	}
	if err := writeEntryToTable(w.EventTable, evt, w.EvtCounter); err != nil {
		return &ErrWriteTable{TableName: "events", Err: err}
	}

	hits := make([]int32, w.NbPmts)
	for i, n := range record.PmtHits {
		hits[i] = int32(n)
	}
	if err := write2dArray(w.PmtHits, &hits, w.EvtCounter, w.NbPmts); err != nil {
		return &ErrWriteTable{TableName: "pmthits", Err: err}
	}

	if record.NbSteps > 0 {
		steps := w.stepRows(record)
		if err := writeArrayToTable(w.StepsTable, &steps, w.StepCounter); err != nil {
			return &ErrWriteTable{TableName: "steps", Err: err}
		}
		w.StepCounter += len(steps)
	}

	w.EvtCounter++
	return nil
}

func (w *Writer) stepRows(record *tpcsim.EventRecord) []StepHDF5 {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	steps := make([]StepHDF5, record.NbSteps)
	for i := range steps {
		steps[i] = StepHDF5{
			eventid:       int32(record.EventID),
			trackid:       int32(record.TrackID[i]),
			typeStr:       w.hdf5String("type", record.ParticleType[i]),
			parentid:      int32(record.ParentID[i]),
			parenttypeStr: w.hdf5String("parenttype", record.ParentType[i]),
			creaprocStr:   w.hdf5String("creaproc", record.CreatorProcess[i]),
			edprocStr:     w.hdf5String("edproc", record.DepositingProcess[i]),
			xp:            float32(record.X[i]),
			yp:            float32(record.Y[i]),
			zp:            float32(record.Z[i]),
			ed:            float32(record.EnergyDeposited[i]),
			ke:            float32(record.KineticEnergy[i]),
			time:          record.Time[i],
		}
	}
	return steps
}

// hdf5String converts a value of column, logging the first value of the
// column cut to STRLEN bytes.
func (w *Writer) hdf5String(column string, value string) [STRLEN]byte {
	s, truncated := convertToHdf5String(value)
	if truncated && !w.truncated[column] {
		w.truncated[column] = true
		tpcsim.GetLogger().Error(fmt.Sprintf("%s: %q longer than %d bytes, column %s values are truncated",
			w.Filename, value, STRLEN, column))
	}
	return s
}

func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	return w.File.Flush(hdf5.F_SCOPE_GLOBAL)
}

func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, dset := range []*hdf5.Dataset{w.TagsTable, w.ParamsTable, w.EventTable, w.StepsTable, w.PmtHits} {
		if dset != nil {
			errs = append(errs, dset.Close())
		}
	}
	for _, group := range []*hdf5.Group{w.RunGroup, w.EventsGroup} {
		if group != nil {
			errs = append(errs, group.Close())
		}
	}
	if w.File != nil {
		errs = append(errs, w.File.Flush(hdf5.F_SCOPE_GLOBAL))
		errs = append(errs, w.File.Close())
	}
	return errors.Join(errs...)
}

// Opener returns the OpenFunc the aggregator uses to create its table.
func Opener(compression Compression) tpcsim.OpenFunc {
	return func(filename string, layout tpcsim.ArrayLayout) (tpcsim.TableWriter, error) {
		return NewWriter(filename, layout.Total(), compression)
	}
}
