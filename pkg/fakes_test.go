package tpcsim

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// memoryTable keeps the rows written by an aggregator.
type memoryTable struct {
	mu       sync.Mutex
	header   *RunHeader
	layout   ArrayLayout
	records  []*EventRecord
	flushes  int
	closes   int
	writeErr error
	flushErr error
}

func (m *memoryTable) WriteHeader(header RunHeader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.header = &header
	return nil
}

func (m *memoryTable) WriteEvent(record *EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records = append(m.records, record.Clone())
	return nil
}

func (m *memoryTable) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return m.flushErr
}

func (m *memoryTable) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *memoryTable) eventIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, len(m.records))
	for i, r := range m.records {
		ids[i] = r.EventID
	}
	return ids
}

// openMemory returns an OpenFunc handing out table, remembering the layout.
func openMemory(table *memoryTable) OpenFunc {
	return func(filename string, layout ArrayLayout) (TableWriter, error) {
		table.layout = layout
		return table, nil
	}
}

func failOpen(filename string, layout ArrayLayout) (TableWriter, error) {
	return nil, errors.New("disk full")
}

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf("[%s] %s", module, message))
}

func (l *recordingLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

// useLogger installs l for the duration of the test.
func useLogger(t interface{ Cleanup(func()) }, l Logger) {
	SetLogger(l)
	t.Cleanup(func() { SetLogger(nil) })
}

// sliceSource serves a fixed list of events.
type sliceSource struct {
	events []Event
	next   int
}

func (s *sliceSource) NextEvent() (Event, error) {
	if s.next >= len(s.events) {
		return Event{}, io.EOF
	}
	e := s.events[s.next]
	s.next++
	return e, nil
}

func depositHit(trackID int, particle string, energyMeV float64, pos Vec3) EnergyDepositHit {
	return EnergyDepositHit{
		TrackID:           trackID,
		ParentID:          trackID - 1,
		ParticleType:      particle,
		ParentType:        "gamma",
		CreatorProcess:    "compt",
		DepositingProcess: "eIoni",
		Position:          pos,
		EnergyDeposited:   energyMeV,
		KineticEnergy:     2 * energyMeV,
		Time:              10,
	}
}

func photonHits(pmts ...int) []PhotonHit {
	hits := make([]PhotonHit, len(pmts))
	for i, pmt := range pmts {
		hits[i] = PhotonHit{PmtNb: pmt, Time: 5}
	}
	return hits
}
