package tpcsim

// EventRecord is the aggregated output of one simulated primary event.
// Energies are in keV, positions in mm and times in s.
type EventRecord struct {
	EventID          int
	NbTopPmtHits     int
	NbBottomPmtHits  int
	NbTopVetoHits    int
	NbBottomVetoHits int
	PmtHits          []int
	TotalEnergy      float64
	NbSteps          int

	// One entry per kept step, in the order the hits were received
	TrackID           []int
	ParentID          []int
	ParticleType      []string
	ParentType        []string
	CreatorProcess    []string
	DepositingProcess []string
	X                 []float64
	Y                 []float64
	Z                 []float64
	EnergyDeposited   []float64
	KineticEnergy     []float64
	Time              []float64

	PrimaryType   string
	PrimaryEnergy float64
	PrimaryX      float64
	PrimaryY      float64
	PrimaryZ      float64
}

func (r *EventRecord) appendStep(hit *EnergyDepositHit) {
	r.TrackID = append(r.TrackID, hit.TrackID)
	r.ParentID = append(r.ParentID, hit.ParentID)
	r.ParticleType = append(r.ParticleType, hit.ParticleType)
	r.ParentType = append(r.ParentType, hit.ParentType)
	r.CreatorProcess = append(r.CreatorProcess, hit.CreatorProcess)
	r.DepositingProcess = append(r.DepositingProcess, hit.DepositingProcess)
	r.X = append(r.X, hit.Position.X()/MilliMeter)
	r.Y = append(r.Y, hit.Position.Y()/MilliMeter)
	r.Z = append(r.Z, hit.Position.Z()/MilliMeter)
	r.EnergyDeposited = append(r.EnergyDeposited, hit.EnergyDeposited/KeV)
	r.KineticEnergy = append(r.KineticEnergy, hit.KineticEnergy/KeV)
	r.Time = append(r.Time, hit.Time/Second)
	r.NbSteps++
}

// Clear resets the record for the next event. Slices keep their capacity.
func (r *EventRecord) Clear() {
	r.EventID = 0
	r.NbTopPmtHits = 0
	r.NbBottomPmtHits = 0
	r.NbTopVetoHits = 0
	r.NbBottomVetoHits = 0
	r.PmtHits = r.PmtHits[:0]
	r.TotalEnergy = 0
	r.NbSteps = 0

	r.TrackID = r.TrackID[:0]
	r.ParentID = r.ParentID[:0]
	r.ParticleType = r.ParticleType[:0]
	r.ParentType = r.ParentType[:0]
	r.CreatorProcess = r.CreatorProcess[:0]
	r.DepositingProcess = r.DepositingProcess[:0]
	r.X = r.X[:0]
	r.Y = r.Y[:0]
	r.Z = r.Z[:0]
	r.EnergyDeposited = r.EnergyDeposited[:0]
	r.KineticEnergy = r.KineticEnergy[:0]
	r.Time = r.Time[:0]

	r.PrimaryType = ""
	r.PrimaryEnergy = 0
	r.PrimaryX = 0
	r.PrimaryY = 0
	r.PrimaryZ = 0
}

// NbPhotonHits is the number of photon hits over every PMT.
func (r *EventRecord) NbPhotonHits() int {
	total := 0
	for _, n := range r.PmtHits {
		total += n
	}
	return total
}

// Clone returns a deep copy. The aggregator reuses its record between
// events, so anything kept past EndEvent must be cloned.
func (r *EventRecord) Clone() *EventRecord {
	c := *r
	c.PmtHits = append([]int(nil), r.PmtHits...)
	c.TrackID = append([]int(nil), r.TrackID...)
	c.ParentID = append([]int(nil), r.ParentID...)
	c.ParticleType = append([]string(nil), r.ParticleType...)
	c.ParentType = append([]string(nil), r.ParentType...)
	c.CreatorProcess = append([]string(nil), r.CreatorProcess...)
	c.DepositingProcess = append([]string(nil), r.DepositingProcess...)
	c.X = append([]float64(nil), r.X...)
	c.Y = append([]float64(nil), r.Y...)
	c.Z = append([]float64(nil), r.Z...)
	c.EnergyDeposited = append([]float64(nil), r.EnergyDeposited...)
	c.KineticEnergy = append([]float64(nil), r.KineticEnergy...)
	c.Time = append([]float64(nil), r.Time...)
	return &c
}
