package tpcsim

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hitDump = `{"header": {"collections": ["EnergyDepositHitsCollection", "PhotonHitsCollection"], "events": 3, "geant4_version": "geant4-10-02-patch-01"}}
{"event_id": 0, "primary": {"type": "gamma", "energy": 0.662, "position": [0, 0, -50]}, "collections": {"EnergyDepositHitsCollection": {"energy_deposits": [{"track_id": 1, "parent_id": 0, "type": "e-", "energy_deposited": 0.001, "position": [1, 2, -3]}]}, "PhotonHitsCollection": {"photons": [{"pmt": 3, "time": 12.5}, {"pmt": 9}]}}}
{"event_id": 1, "collections": {}}
{"event_id": 2, "collections": {"PhotonHitsCollection": {"photons": [{"pmt": 0}]}}}
`

func readAll(t *testing.T, r *HitsReader) []Event {
	t.Helper()
	var events []Event
	for {
		e, err := r.NextEvent()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func TestHitsReader(t *testing.T) {
	r, err := NewHitsReader(strings.NewReader(hitDump), 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Info.NbEvents)
	assert.Equal(t, "geant4-10-02-patch-01", r.Info.Geant4Version)
	assert.Equal(t, []string{EnergyDepositHitsCollection, PhotonHitsCollection}, r.Registry.Names())

	events := readAll(t, r)
	require.Len(t, events, 3)

	energy, ok := r.Registry.Resolve(EnergyDepositHitsCollection)
	require.True(t, ok)
	photon, ok := r.Registry.Resolve(PhotonHitsCollection)
	require.True(t, ok)

	e := events[0]
	assert.Equal(t, 0, e.EventID)
	assert.Equal(t, "gamma", e.Primary.ParticleType)
	assert.Equal(t, Vec3{0, 0, -50}, e.Primary.Position)
	deposits := e.Hits.EnergyDepositHits(energy)
	require.Len(t, deposits, 1)
	assert.Equal(t, "e-", deposits[0].ParticleType)
	assert.Equal(t, 0.001, deposits[0].EnergyDeposited)
	assert.Equal(t, []PhotonHit{{PmtNb: 3, Time: 12.5}, {PmtNb: 9}}, e.Hits.PhotonHits(photon))

	assert.Empty(t, events[1].Hits.PhotonHits(photon))
	assert.Len(t, events[2].Hits.PhotonHits(photon), 1)
	assert.Nil(t, events[2].Hits.EnergyDepositHits(Unresolved))
}

func TestHitsReaderSkipAndMax(t *testing.T) {
	r, err := NewHitsReader(strings.NewReader(hitDump), 2, 1)
	require.NoError(t, err)
	events := readAll(t, r)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].EventID)
}

func TestHitsReaderWithoutHeader(t *testing.T) {
	dump := `{"collections": {"PhotonHitsCollection": {"photons": [{"pmt": 1}]}}}
{"collections": {"Custom": {}, "PhotonHitsCollection": {}}}
`
	r, err := NewHitsReader(strings.NewReader(dump), 100, 0)
	require.NoError(t, err)
	events := readAll(t, r)
	require.Len(t, events, 2)
	// Ids are numbered from 0 when the dump has none
	assert.Equal(t, 0, events[0].EventID)
	assert.Equal(t, 1, events[1].EventID)
	assert.Equal(t, []string{PhotonHitsCollection, "Custom"}, r.Registry.Names())
}

func TestHitsReaderEmpty(t *testing.T) {
	r, err := NewHitsReader(strings.NewReader(""), 100, 0)
	require.NoError(t, err)
	_, err = r.NextEvent()
	assert.Equal(t, io.EOF, err)
}

func TestHitsReaderErrors(t *testing.T) {
	_, err := NewHitsReader(strings.NewReader("not json"), 100, 0)
	assert.Error(t, err)

	dump := `{"event_id": 0, "collections": {}}
{"header": {"events": 1}}
`
	r, err := NewHitsReader(strings.NewReader(dump), 100, 0)
	require.NoError(t, err)
	_, err = r.NextEvent()
	require.NoError(t, err)
	_, err = r.NextEvent()
	assert.ErrorContains(t, err, "run header")
}

func TestCountEvents(t *testing.T) {
	reader := strings.NewReader(hitDump)
	n, err := CountEvents(reader)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// The reader is rewound
	r, err := NewHitsReader(reader, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Info.NbEvents)
}

func TestNumberOfEventsToProcess(t *testing.T) {
	cases := []struct {
		file, skip, max, want int
	}{
		{10, 0, 1000, 10},
		{10, 2, 1000, 8},
		{10, 0, 5, 5},
		{10, 2, 5, 3},
		{10, 20, 1000, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NumberOfEventsToProcess(c.file, c.skip, c.max), "%+v", c)
	}
}
