package tpcsim

// Units used by the transport engine for the values it stores in hits.
// Divide a native value by one of these to express it in that unit.
const (
	MilliMeter = 1.0
	CentiMeter = 10 * MilliMeter

	MeV = 1.0
	KeV = 1e-3 * MeV
	GeV = 1e3 * MeV

	NanoSecond  = 1.0
	MicroSecond = 1e3 * NanoSecond
	Second      = 1e9 * NanoSecond
)
