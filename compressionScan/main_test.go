package main

import (
	"errors"
	"testing"
	"time"

	tpcsim "github.com/next-exp/tpcsim_go/pkg"
	"github.com/next-exp/tpcsim_go/pkg/h5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTable struct {
	written  []int
	writeErr error
	closes   int
}

func (c *countingTable) WriteHeader(tpcsim.RunHeader) error { return nil }

func (c *countingTable) WriteEvent(record *tpcsim.EventRecord) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, record.EventID)
	return nil
}

func (c *countingTable) Flush() error { return nil }

func (c *countingTable) Close() error {
	c.closes++
	return errors.New("disk full")
}

func photonEvent(registry *tpcsim.CollectionRegistry, eventID int, pmt int) tpcsim.Event {
	h, _ := registry.Resolve(tpcsim.PhotonHitsCollection)
	hits := tpcsim.NewEventHits()
	hits.AddPhotonHits(h, tpcsim.PhotonHit{PmtNb: pmt})
	return tpcsim.Event{EventID: eventID, Hits: hits}
}

func startRun(t *testing.T, table *countingTable, nbEvents int) (*tpcsim.Aggregator, *tpcsim.CollectionRegistry) {
	t.Helper()
	registry := tpcsim.NewCollectionRegistry(tpcsim.EnergyDepositHitsCollection, tpcsim.PhotonHitsCollection)
	open := func(string, tpcsim.ArrayLayout) (tpcsim.TableWriter, error) { return table, nil }
	a := tpcsim.NewAggregator(tpcsim.Options{Filename: "scan.h5"}, registry, open)
	require.NoError(t, a.BeginRun(nbEvents, tpcsim.DefaultArrayLayout()))
	return a, registry
}

func TestDeflateSettings(t *testing.T) {
	settings := deflateSettings([]uint{1024, 4096})
	require.Len(t, settings, 20)
	for i, c := range settings {
		assert.Equal(t, i%10, c.Level)
	}
	assert.Equal(t, uint(1024), settings[9].ChunkSize)
	assert.Equal(t, uint(4096), settings[10].ChunkSize)
}

func TestParseChunkSizes(t *testing.T) {
	sizes, err := parseChunkSizes("1024, 4096,,32768")
	require.NoError(t, err)
	assert.Equal(t, []uint{1024, 4096, 32768}, sizes)

	for _, bad := range []string{"", "0", "12,abc", "-5"} {
		_, err := parseChunkSizes(bad)
		assert.Error(t, err, bad)
	}
}

func TestResultString(t *testing.T) {
	r := Result{Compression: h5.Compression{Level: 4, ChunkSize: 1024}, Duration: 1500 * time.Millisecond, Size: 2048}
	assert.Equal(t, "(deflate 4, chunk 1024) Time: 1500 ms, size 2048 bytes", r.String())
}

func TestWriteEventsDiscardsOutOfRangePmts(t *testing.T) {
	table := &countingTable{}
	a, registry := startRun(t, table, 3)
	events := []tpcsim.Event{
		photonEvent(registry, 0, 0),
		photonEvent(registry, 1, 99),
		photonEvent(registry, 2, 13),
	}

	err := writeEvents(a, events, true)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, []int{0, 2}, table.written)
	assert.Equal(t, 1, table.closes)
}

func TestWriteEventsStopsOnWriteError(t *testing.T) {
	table := &countingTable{writeErr: errors.New("no space left")}
	a, registry := startRun(t, table, 2)
	events := []tpcsim.Event{photonEvent(registry, 0, 0), photonEvent(registry, 1, 1)}

	err := writeEvents(a, events, true)
	assert.ErrorContains(t, err, "error processing event 0")
	assert.ErrorContains(t, err, "no space left")
	// The run is ended on the abort path and its error kept
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, table.closes)
}

func TestWriteEventsWithoutDiscard(t *testing.T) {
	table := &countingTable{}
	a, registry := startRun(t, table, 2)

	err := writeEvents(a, []tpcsim.Event{photonEvent(registry, 0, 99), photonEvent(registry, 1, 0)}, false)
	var rangeErr *tpcsim.ErrPmtIndexOutOfRange
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 99, rangeErr.PmtNb)
	assert.Empty(t, table.written)
	assert.Equal(t, 1, table.closes)
}
