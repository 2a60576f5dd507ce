package tpcsim

// ArrayLayout holds the number of PMTs of each array. PMT indices are
// assigned in this order: top, bottom, top veto, bottom veto.
type ArrayLayout struct {
	NbTopPmts        int `json:"nb_top_pmts"`
	NbBottomPmts     int `json:"nb_bottom_pmts"`
	NbTopVetoPmts    int `json:"nb_top_veto_pmts"`
	NbBottomVetoPmts int `json:"nb_bottom_veto_pmts"`
}

// PmtRange is the half-open index range [Start, End) of one array.
type PmtRange struct {
	Start int
	End   int
}

func (r PmtRange) Len() int {
	return r.End - r.Start
}

// Sum adds the counts of the range.
func (r PmtRange) Sum(counts []int) int {
	total := 0
	for _, n := range counts[r.Start:r.End] {
		total += n
	}
	return total
}

// DefaultArrayLayout is the Muenster TPC: two arrays of seven PMTs, no veto.
func DefaultArrayLayout() ArrayLayout {
	return ArrayLayout{
		NbTopPmts:    7,
		NbBottomPmts: 7,
	}
}

func (l ArrayLayout) Total() int {
	return l.NbTopPmts + l.NbBottomPmts + l.NbTopVetoPmts + l.NbBottomVetoPmts
}

func (l ArrayLayout) Top() PmtRange {
	return PmtRange{Start: 0, End: l.NbTopPmts}
}

func (l ArrayLayout) Bottom() PmtRange {
	start := l.Top().End
	return PmtRange{Start: start, End: start + l.NbBottomPmts}
}

func (l ArrayLayout) TopVeto() PmtRange {
	start := l.Bottom().End
	return PmtRange{Start: start, End: start + l.NbTopVetoPmts}
}

func (l ArrayLayout) BottomVeto() PmtRange {
	start := l.TopVeto().End
	return PmtRange{Start: start, End: start + l.NbBottomVetoPmts}
}

func (l ArrayLayout) Validate() error {
	// The first negative array in index order is reported
	counts := []struct {
		name string
		n    int
	}{
		{"top", l.NbTopPmts},
		{"bottom", l.NbBottomPmts},
		{"top veto", l.NbTopVetoPmts},
		{"bottom veto", l.NbBottomVetoPmts},
	}
	for _, c := range counts {
		if c.n < 0 {
			return &ErrInvalidLayout{Array: c.name, Count: c.n}
		}
	}
	if l.Total() == 0 {
		return &ErrInvalidLayout{Array: "all", Count: 0}
	}
	return nil
}
