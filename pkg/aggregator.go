package tpcsim

import (
	"errors"
	"fmt"
)

const DefaultAutoSaveInterval = 10000

// TableWriter is the output table of a run.
type TableWriter interface {
	WriteHeader(header RunHeader) error
	WriteEvent(record *EventRecord) error
	// Flush makes the rows written so far durable.
	Flush() error
	Close() error
}

// OpenFunc creates the output table of a run.
type OpenFunc func(filename string, layout ArrayLayout) (TableWriter, error)

type Tag struct {
	Name  string
	Value string
}

// RunHeader is written once when the run starts.
type RunHeader struct {
	Tags     []Tag
	NbEvents int
}

// Observer is notified of every persisted event, before the aggregator
// clears its record.
type Observer interface {
	EventWritten(record *EventRecord)
}

type Options struct {
	Filename         string
	WriteEmpty       bool
	AutoSaveInterval int
	Geant4Version    string
	MCName           string
	MCVersion        string
	// Fiducial, when set, drops events without energy inside the volume
	Fiducial  *FiducialVolume
	Observers []Observer
}

type RunStats struct {
	Processed   int
	Written     int
	Rejected    int
	Checkpoints int
}

// Aggregator builds one EventRecord per event out of the hit collections
// and appends the records worth keeping to the output table.
// It is not safe for concurrent use: the event loop calls it one event at
// a time.
type Aggregator struct {
	opts   Options
	source CollectionSource
	open   OpenFunc

	layout ArrayLayout
	writer TableWriter
	record EventRecord

	energyHandle   Handle
	photonHandle   Handle
	missingLogged  map[string]bool
	eventID        int
	eventStarted   bool
	runStarted     bool
	nbEventsWanted int
	stats          RunStats
}

func NewAggregator(opts Options, source CollectionSource, open OpenFunc) *Aggregator {
	if opts.AutoSaveInterval <= 0 {
		opts.AutoSaveInterval = DefaultAutoSaveInterval
	}
	if opts.MCName == "" {
		opts.MCName = "muensterTPC"
	}
	if opts.MCVersion == "" {
		opts.MCVersion = "X.Y.Z"
	}
	return &Aggregator{
		opts:         opts,
		source:       source,
		open:         open,
		energyHandle: Unresolved,
		photonHandle: Unresolved,
	}
}

// SetWriteEmpty changes whether events without any activity are written.
// It takes effect for the next run.
func (a *Aggregator) SetWriteEmpty(writeEmpty bool) {
	a.opts.WriteEmpty = writeEmpty
}

func (a *Aggregator) Stats() RunStats {
	return a.stats
}

func (a *Aggregator) Filename() string {
	return a.opts.Filename
}

// BeginRun opens the output table and writes the run header.
func (a *Aggregator) BeginRun(nbEvents int, layout ArrayLayout) error {
	if a.runStarted {
		return ErrRunInProgress
	}
	if err := layout.Validate(); err != nil {
		return err
	}
	writer, err := a.open(a.opts.Filename, layout)
	if err != nil {
		return &ErrOpenFile{Filename: a.opts.Filename, Err: err}
	}
	header := RunHeader{
		Tags: []Tag{
			{Name: "G4VERSION_TAG", Value: a.opts.Geant4Version},
			{Name: "MC_TAG", Value: a.opts.MCName},
			{Name: "MCVERSION_TAG", Value: a.opts.MCVersion},
		},
		NbEvents: nbEvents,
	}
	if err := writer.WriteHeader(header); err != nil {
		closeErr := writer.Close()
		return errors.Join(fmt.Errorf("error writing run header: %w", err), closeErr)
	}

	a.layout = layout
	a.writer = writer
	a.nbEventsWanted = nbEvents
	a.energyHandle = Unresolved
	a.photonHandle = Unresolved
	a.missingLogged = make(map[string]bool)
	a.record.Clear()
	a.eventStarted = false
	a.stats = RunStats{}
	a.runStarted = true

	logger.Info(fmt.Sprintf("Run started: %d events to simulate, %d PMTs, output %s",
		nbEvents, layout.Total(), a.opts.Filename), "aggregator")
	return nil
}

// BeginEvent resolves the hit collections the first time they are needed
// in the run.
func (a *Aggregator) BeginEvent(eventID int) error {
	if !a.runStarted {
		return ErrRunNotStarted
	}
	if a.energyHandle == Unresolved {
		a.energyHandle = a.resolve(EnergyDepositHitsCollection)
	}
	if a.photonHandle == Unresolved {
		a.photonHandle = a.resolve(PhotonHitsCollection)
	}
	a.eventID = eventID
	a.eventStarted = true
	return nil
}

func (a *Aggregator) resolve(name string) Handle {
	if a.source == nil {
		return Unresolved
	}
	h, ok := a.source.Resolve(name)
	if !ok {
		if !a.missingLogged[name] {
			logger.Info(fmt.Sprintf("Hit collection %s not found, treating it as empty", name), "aggregator")
			a.missingLogged[name] = true
		}
		return Unresolved
	}
	return h
}

// Handles returns the collection handles resolved for the run.
func (a *Aggregator) Handles() (energy Handle, photon Handle) {
	return a.energyHandle, a.photonHandle
}

// EndEvent aggregates the hits of the current event and appends the record
// to the output table if the event is kept. The per-event state is cleared
// whatever the outcome.
func (a *Aggregator) EndEvent(energyHits []EnergyDepositHit, photonHits []PhotonHit, primary Primary) (bool, error) {
	if !a.runStarted {
		return false, ErrRunNotStarted
	}
	if !a.eventStarted {
		return false, ErrNoEventInProgress
	}
	eventID := a.eventID

	persisted, err := a.aggregate(eventID, energyHits, photonHits, primary)

	a.record.Clear()
	a.eventStarted = false
	a.stats.Processed++

	if eventID%a.opts.AutoSaveInterval == 0 {
		if flushErr := a.writer.Flush(); flushErr != nil {
			err = errors.Join(err, fmt.Errorf("error saving checkpoint at event %d: %w", eventID, flushErr))
		} else {
			a.stats.Checkpoints++
		}
	}
	return persisted, err
}

func (a *Aggregator) aggregate(eventID int, energyHits []EnergyDepositHit, photonHits []PhotonHit, primary Primary) (bool, error) {
	nbPmts := a.layout.Total()
	for _, hit := range photonHits {
		if hit.PmtNb < 0 || hit.PmtNb >= nbPmts {
			a.stats.Rejected++
			return false, &ErrPmtIndexOutOfRange{EventID: eventID, PmtNb: hit.PmtNb, NbPmts: nbPmts}
		}
	}

	r := &a.record
	r.EventID = eventID
	r.PrimaryType = primary.ParticleType
	r.PrimaryEnergy = primary.Energy / KeV
	r.PrimaryX = primary.Position.X() / MilliMeter
	r.PrimaryY = primary.Position.Y() / MilliMeter
	r.PrimaryZ = primary.Position.Z() / MilliMeter

	for i := range energyHits {
		hit := &energyHits[i]
		if hit.ParticleType == OpticalPhoton {
			continue
		}
		r.appendStep(hit)
		r.TotalEnergy += hit.EnergyDeposited / KeV
	}

	if cap(r.PmtHits) >= nbPmts {
		r.PmtHits = r.PmtHits[:nbPmts]
		clear(r.PmtHits)
	} else {
		r.PmtHits = make([]int, nbPmts)
	}
	for _, hit := range photonHits {
		r.PmtHits[hit.PmtNb]++
	}
	r.NbTopPmtHits = a.layout.Top().Sum(r.PmtHits)
	r.NbBottomPmtHits = a.layout.Bottom().Sum(r.PmtHits)
	r.NbTopVetoHits = a.layout.TopVeto().Sum(r.PmtHits)
	r.NbBottomVetoHits = a.layout.BottomVeto().Sum(r.PmtHits)

	if !a.keep(len(photonHits)) {
		return false, nil
	}
	if err := a.writer.WriteEvent(r); err != nil {
		return false, &ErrWriteEvent{EventID: eventID, Err: err}
	}
	a.stats.Written++
	for _, o := range a.opts.Observers {
		o.EventWritten(r)
	}
	return true, nil
}

func (a *Aggregator) keep(nbPhotonHits int) bool {
	if a.opts.WriteEmpty {
		return true
	}
	if a.record.TotalEnergy <= 0 && nbPhotonHits == 0 {
		return false
	}
	if a.opts.Fiducial != nil && !a.opts.Fiducial.Contains(&a.record) {
		return false
	}
	return true
}

// ProcessEvent runs BeginEvent and EndEvent for an event handed over by the
// transport engine.
func (a *Aggregator) ProcessEvent(evt Event) (bool, error) {
	if err := a.BeginEvent(evt.EventID); err != nil {
		return false, err
	}
	var energyHits []EnergyDepositHit
	var photonHits []PhotonHit
	if evt.Hits != nil {
		energyHits = evt.Hits.EnergyDepositHits(a.energyHandle)
		photonHits = evt.Hits.PhotonHits(a.photonHandle)
	}
	return a.EndEvent(energyHits, photonHits, evt.Primary)
}

// EndRun flushes and closes the output table. Calling it again is a no-op.
func (a *Aggregator) EndRun() error {
	if !a.runStarted {
		return nil
	}
	a.runStarted = false
	var errs []error
	if err := a.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("error flushing output: %w", err))
	}
	if err := a.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing output: %w", err))
	}
	a.writer = nil
	logger.Info(fmt.Sprintf("Run finished: %d processed, %d written, %d rejected, %d checkpoints",
		a.stats.Processed, a.stats.Written, a.stats.Rejected, a.stats.Checkpoints), "aggregator")
	return errors.Join(errs...)
}
