package live

import (
	"sync"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
)

// Trustworthy reports whether a fetched split may replace what a viewer shows. A payload
// with no people or no totals is a save caught mid-flight. All-zero totals are accepted
// only when nothing priced is assigned to anyone.
func Trustworthy(sp *client.Split) bool {
	if sp == nil || len(sp.People) == 0 || len(sp.Totals) == 0 {
		return false
	}

	for _, t := range sp.Totals {
		if t.Total > 0 {
			return true
		}
	}

	prices := make(map[int64]float64, len(sp.Items))
	for _, it := range sp.Items {
		prices[it.ID] = it.Price
	}

	for _, q := range sp.Quantities {
		if prices[q.ItemID]*q.Quantity > 0 {
			return false
		}
	}

	return true
}

// Snapshot holds the last known-good split for a polling viewer.
type Snapshot struct {
	mu   sync.RWMutex
	last *client.Split
}

// Accept offers a freshly fetched split. It replaces the snapshot only when trustworthy
// and returns whatever should be displayed, which is nil until a good payload arrives.
func (s *Snapshot) Accept(sp *client.Split) (shown *client.Split, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if Trustworthy(sp) {
		s.last = sp
		return sp, true
	}

	return s.last, false
}

func (s *Snapshot) Current() *client.Split {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last
}
