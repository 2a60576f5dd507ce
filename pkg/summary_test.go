package tpcsim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryFill(t *testing.T) {
	s := NewSummary(DefaultArrayLayout(), 10, 100)
	table := &memoryTable{}
	a := NewAggregator(Options{Observers: []Observer{s}}, fullRegistry(), openMemory(table))
	require.NoError(t, a.BeginRun(3, DefaultArrayLayout()))

	endEvent(t, a, 0, []EnergyDepositHit{depositHit(1, "e-", 15*KeV, Vec3{})}, photonHits(0, 0, 8))
	endEvent(t, a, 1, nil, photonHits(13))
	endEvent(t, a, 2, nil, nil)

	assert.Equal(t, int64(2), s.Energy.Entries())
	assert.Equal(t, int64(2), s.TopBottom.Entries())
	assert.InDelta(t, 4.0, s.Occupancy.SumW(), 1e-12)
	assert.InDelta(t, 2.0, s.Occupancy.Binning.Bins[0].SumW(), 1e-12)
}

func TestSummaryWriteYODA(t *testing.T) {
	s := NewSummary(DefaultArrayLayout(), 10, 100)
	s.EventWritten(&EventRecord{TotalEnergy: 12, NbSteps: 3, PmtHits: make([]int, 14)})

	filename := filepath.Join(t.TempDir(), "events.yoda")
	require.NoError(t, s.WriteYODA(filename))

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	content := string(raw)
	assert.Equal(t, 3, strings.Count(content, "BEGIN YODA_HISTO1D"))
	assert.Equal(t, 1, strings.Count(content, "BEGIN YODA_HISTO2D"))
	assert.Contains(t, content, "Total deposited energy [keV]")
}
