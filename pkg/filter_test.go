package tpcsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiducialVolume(t *testing.T) {
	f := DefaultFiducialVolume()
	r := &EventRecord{
		X:               []float64{0, 39, 40, 0, 0},
		Y:               []float64{0, 0, 0, 0, 0},
		Z:               []float64{-1, -166, -10, 0, -167},
		EnergyDeposited: []float64{1, 2, 4, 8, 16},
	}

	// Steps on the boundary are outside
	assert.InDelta(t, 3.0, f.EnergyInside(r), 1e-12)
	assert.True(t, f.Contains(r))

	r.EnergyDeposited = []float64{0, 0, 4, 8, 16}
	assert.False(t, f.Contains(r))
}

func TestFiducialVolumeEmptyRecord(t *testing.T) {
	f := DefaultFiducialVolume()
	assert.False(t, f.Contains(&EventRecord{}))
}
