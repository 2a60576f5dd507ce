package tpcsim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
)

// RunInfo is the optional first line of a hit dump.
type RunInfo struct {
	Collections   []string `json:"collections"`
	NbEvents      int      `json:"events"`
	Geant4Version string   `json:"geant4_version"`
}

type dumpCollection struct {
	EnergyDeposits []EnergyDepositHit `json:"energy_deposits"`
	Photons        []PhotonHit        `json:"photons"`
}

type dumpLine struct {
	Header      *RunInfo                  `json:"header"`
	EventID     *int                      `json:"event_id"`
	Primary     Primary                   `json:"primary"`
	Collections map[string]dumpCollection `json:"collections"`
}

// HitsReader reads the hit dump written by the transport engine: a stream
// of JSON objects, one per event, optionally preceded by a run header.
type HitsReader struct {
	decoder   *json.Decoder
	Info      RunInfo
	Registry  *CollectionRegistry
	EvtCount  int
	maxEvents int
	skip      int
	pending   *dumpLine
	nextID    int
}

func NewHitsReader(r io.Reader, maxEvents int, skip int) (*HitsReader, error) {
	h := &HitsReader{
		decoder:   json.NewDecoder(r),
		Registry:  NewCollectionRegistry(),
		EvtCount:  -1,
		maxEvents: maxEvents,
		skip:      skip,
	}
	var first dumpLine
	err := h.decoder.Decode(&first)
	if err == io.EOF {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading hit dump: %w", err)
	}
	if first.Header != nil {
		h.Info = *first.Header
		for _, name := range h.Info.Collections {
			h.Registry.Register(name)
		}
	} else {
		h.pending = &first
	}
	return h, nil
}

func (h *HitsReader) readLine() (*dumpLine, error) {
	if h.pending != nil {
		line := h.pending
		h.pending = nil
		return line, nil
	}
	line := &dumpLine{}
	if err := h.decoder.Decode(line); err != nil {
		return nil, err
	}
	return line, nil
}

// NextEvent returns the next event to process, io.EOF once the dump is
// exhausted or max events is reached.
func (h *HitsReader) NextEvent() (Event, error) {
	for {
		line, err := h.readLine()
		if err != nil {
			return Event{}, err
		}
		if line.Header != nil {
			return Event{}, errors.New("run header found after the first event")
		}
		eventID := h.nextID
		if line.EventID != nil {
			eventID = *line.EventID
		}
		h.nextID = eventID + 1

		h.EvtCount++
		if h.EvtCount >= h.maxEvents {
			if logVerbosity > 0 {
				logger.Info("Max events reached", "hitsReader")
			}
			return Event{}, io.EOF
		}
		if h.EvtCount < h.skip {
			if logVerbosity > 1 {
				logger.Info(fmt.Sprintf("Skipping event %d with ID %d", h.EvtCount, eventID), "hitsReader")
			}
			continue
		}
		if logVerbosity > 1 {
			logger.Info(fmt.Sprintf("Reading event %d with ID %d", h.EvtCount, eventID), "hitsReader")
		}
		return h.toEvent(eventID, line), nil
	}
}

func (h *HitsReader) toEvent(eventID int, line *dumpLine) Event {
	hits := NewEventHits()
	for _, name := range slices.Sorted(maps.Keys(line.Collections)) {
		collection := line.Collections[name]
		handle := h.Registry.Register(name)
		hits.AddEnergyDepositHits(handle, collection.EnergyDeposits...)
		hits.AddPhotonHits(handle, collection.Photons...)
	}
	return Event{
		EventID: eventID,
		Hits:    hits,
		Primary: line.Primary,
	}
}

// CountEvents counts the events of a hit dump and rewinds it.
func CountEvents(r io.ReadSeeker) (int, error) {
	decoder := json.NewDecoder(r)
	count := 0
	for {
		var line dumpLine
		err := decoder.Decode(&line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("error counting events: %w", err)
		}
		if line.Header == nil {
			count++
		}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return count, err
	}
	return count, nil
}

// NumberOfEventsToProcess is the number of events a run will see.
func NumberOfEventsToProcess(fileEvtCount int, skipEvts int, maxEvtCount int) int {
	evtsToRead := maxEvtCount - skipEvts
	if available := fileEvtCount - skipEvts; evtsToRead > available {
		evtsToRead = available
	}
	if evtsToRead < 0 {
		evtsToRead = 0
	}
	return evtsToRead
}
