package tpcsim

// OpticalPhoton is the particle type the transport engine gives to
// scintillation and Cerenkov photons. Steps of these tracks are not energy
// deposits.
const OpticalPhoton = "opticalphoton"

const (
	EnergyDepositHitsCollection = "EnergyDepositHitsCollection"
	PhotonHitsCollection        = "PhotonHitsCollection"
)

type Vec3 [3]float64

func (v Vec3) X() float64 { return v[0] }
func (v Vec3) Y() float64 { return v[1] }
func (v Vec3) Z() float64 { return v[2] }

// EnergyDepositHit is one step depositing energy in the xenon volume.
// Values are in native transport units (MeV, mm, ns).
type EnergyDepositHit struct {
	TrackID           int     `json:"track_id"`
	ParentID          int     `json:"parent_id"`
	ParticleType      string  `json:"type"`
	ParentType        string  `json:"parent_type"`
	CreatorProcess    string  `json:"creator_process"`
	DepositingProcess string  `json:"depositing_process"`
	Position          Vec3    `json:"position"`
	EnergyDeposited   float64 `json:"energy_deposited"`
	KineticEnergy     float64 `json:"kinetic_energy"`
	Time              float64 `json:"time"`
}

// PhotonHit is one optical photon absorbed at a PMT photocathode.
type PhotonHit struct {
	PmtNb    int     `json:"pmt"`
	Position Vec3    `json:"position"`
	Time     float64 `json:"time"`
}

// Primary describes the particle shot by the particle source for one event.
type Primary struct {
	ParticleType string  `json:"type"`
	Energy       float64 `json:"energy"`
	Position     Vec3    `json:"position"`
}
