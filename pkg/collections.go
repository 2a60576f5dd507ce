package tpcsim

import (
	"slices"
	"sync"
)

// Handle identifies a hit collection for the duration of a run.
type Handle int

const Unresolved Handle = -1

// CollectionSource resolves hit collection names, the role of the
// sensitive detector manager of the transport engine.
type CollectionSource interface {
	Resolve(name string) (Handle, bool)
}

// HitCollections gives access to the hit collections of one event.
// An unknown handle yields no hits.
type HitCollections interface {
	EnergyDepositHits(h Handle) []EnergyDepositHit
	PhotonHits(h Handle) []PhotonHit
}

// CollectionRegistry assigns handles to collection names in registration
// order. It is safe for concurrent use.
type CollectionRegistry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

func NewCollectionRegistry(names ...string) *CollectionRegistry {
	r := &CollectionRegistry{handles: make(map[string]Handle)}
	for _, name := range names {
		r.Register(name)
	}
	return r
}

func (r *CollectionRegistry) Register(name string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[name]; ok {
		return h
	}
	h := Handle(len(r.handles))
	r.handles[name] = h
	return h
}

func (r *CollectionRegistry) Resolve(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[name]
	if !ok {
		return Unresolved, false
	}
	return h, true
}

// Names returns the registered names sorted by handle.
func (r *CollectionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return int(r.handles[a]) - int(r.handles[b])
	})
	return names
}

// EventHits stores the collections of one event by handle.
type EventHits struct {
	energy  map[Handle][]EnergyDepositHit
	photons map[Handle][]PhotonHit
}

func NewEventHits() *EventHits {
	return &EventHits{
		energy:  make(map[Handle][]EnergyDepositHit),
		photons: make(map[Handle][]PhotonHit),
	}
}

func (e *EventHits) AddEnergyDepositHits(h Handle, hits ...EnergyDepositHit) {
	e.energy[h] = append(e.energy[h], hits...)
}

func (e *EventHits) AddPhotonHits(h Handle, hits ...PhotonHit) {
	e.photons[h] = append(e.photons[h], hits...)
}

func (e *EventHits) EnergyDepositHits(h Handle) []EnergyDepositHit {
	if h == Unresolved {
		return nil
	}
	return e.energy[h]
}

func (e *EventHits) PhotonHits(h Handle) []PhotonHit {
	if h == Unresolved {
		return nil
	}
	return e.photons[h]
}

// Event is everything the transport engine hands over at the end of an
// event.
type Event struct {
	EventID int
	Hits    HitCollections
	Primary Primary
}
