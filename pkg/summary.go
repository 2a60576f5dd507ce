package tpcsim

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"go-hep.org/x/hep/hbook"
)

// Summary fills run level histograms with the persisted events. It may be
// shared by the aggregators of a parallel run.
type Summary struct {
	mu        sync.Mutex
	Energy    *hbook.H1D
	Steps     *hbook.H1D
	Occupancy *hbook.H1D
	TopBottom *hbook.H2D
}

func NewSummary(layout ArrayLayout, nbins int, maxEnergy float64) *Summary {
	nbPmts := layout.Total()
	s := &Summary{
		Energy:    hbook.NewH1D(nbins, 0, maxEnergy),
		Steps:     hbook.NewH1D(nbins, 0, float64(nbins)),
		Occupancy: hbook.NewH1D(nbPmts, 0, float64(nbPmts)),
		TopBottom: hbook.NewH2D(nbins, 0, float64(nbins), nbins, 0, float64(nbins)),
	}
	s.Energy.Annotation()["name"] = "etot"
	s.Energy.Annotation()["title"] = "Total deposited energy [keV]"
	s.Steps.Annotation()["name"] = "nsteps"
	s.Steps.Annotation()["title"] = "Energy depositing steps"
	s.Occupancy.Annotation()["name"] = "pmthits"
	s.Occupancy.Annotation()["title"] = "Photon hits per PMT"
	s.TopBottom.Annotation()["name"] = "ntpmthits_vs_nbpmthits"
	s.TopBottom.Annotation()["title"] = "Top vs bottom array hits"
	return s
}

func (s *Summary) EventWritten(record *EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Energy.Fill(record.TotalEnergy, 1)
	s.Steps.Fill(float64(record.NbSteps), 1)
	for pmt, n := range record.PmtHits {
		if n > 0 {
			s.Occupancy.Fill(float64(pmt), float64(n))
		}
	}
	s.TopBottom.Fill(float64(record.NbTopPmtHits), float64(record.NbBottomPmtHits), 1)
}

func (s *Summary) MarshalYODA() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf bytes.Buffer
	for _, h := range []interface{ MarshalYODA() ([]byte, error) }{s.Energy, s.Steps, s.Occupancy, s.TopBottom} {
		raw, err := h.MarshalYODA()
		if err != nil {
			return nil, fmt.Errorf("error marshaling histogram: %w", err)
		}
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func (s *Summary) WriteYODA(filename string) error {
	raw, err := s.MarshalYODA()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, raw, 0o644); err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	return nil
}
