package tpcsim

import "math"

// FiducialVolume is the drift region between the gate (z = 0) and the
// cathode (z = -DriftLength), inside the PTFE cylinder. Lengths in mm.
type FiducialVolume struct {
	DriftLength float64 `json:"drift_length"`
	Radius      float64 `json:"radius"`
}

// DefaultFiducialVolume is the Muenster TPC central PTFE cylinder.
func DefaultFiducialVolume() FiducialVolume {
	return FiducialVolume{
		DriftLength: 167.0,
		Radius:      40.0,
	}
}

// Contains reports whether any step of the record deposits energy inside
// the volume.
func (f *FiducialVolume) Contains(r *EventRecord) bool {
	return f.EnergyInside(r) > 0
}

// EnergyInside sums the energy of the steps inside the volume, in keV.
func (f *FiducialVolume) EnergyInside(r *EventRecord) float64 {
	energy := 0.0
	for i := range r.EnergyDeposited {
		z := r.Z[i]
		if z >= 0 || z <= -f.DriftLength {
			continue
		}
		if math.Hypot(r.X[i], r.Y[i]) >= f.Radius {
			continue
		}
		energy += r.EnergyDeposited[i]
	}
	return energy
}
