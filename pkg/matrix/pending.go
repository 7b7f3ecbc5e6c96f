package matrix

import (
	"cmp"
	"maps"
	"slices"
)

// Pending maps record id to event id to the accumulated patch of that pair.
type Pending map[uint]map[uint]Patch

func (p Pending) Set(recordID, eventID uint, patch Patch) {
	events, ok := p[recordID]
	if !ok {
		events = make(map[uint]Patch)
		p[recordID] = events
	}
	events[eventID] = events[eventID].Merge(patch)
}

func (p Pending) Get(recordID, eventID uint) (Patch, bool) {
	patch, ok := p[recordID][eventID]
	return patch, ok
}

// Len returns the number of (record, event) pairs.
func (p Pending) Len() int {
	var n int
	for _, events := range p {
		n += len(events)
	}
	return n
}

func (p Pending) Clone() Pending {
	clone := make(Pending, len(p))
	for recordID, events := range p {
		clone[recordID] = maps.Clone(events)
	}
	return clone
}

// Under returns a new map holding base with p laid on top, so fields set in p win.
func (p Pending) Under(base Pending) Pending {
	merged := base.Clone()
	for recordID, events := range p {
		for eventID, patch := range events {
			merged.Set(recordID, eventID, patch)
		}
	}
	return merged
}

type pair struct {
	recordID uint
	eventID  uint
	patch    Patch
}

// pairs lists every entry ordered by record, then event.
func (p Pending) pairs() []pair {
	var result []pair
	for recordID, events := range p {
		for eventID, patch := range events {
			result = append(result, pair{recordID: recordID, eventID: eventID, patch: patch})
		}
	}
	slices.SortFunc(result, func(a, b pair) int {
		return cmp.Or(cmp.Compare(a.recordID, b.recordID), cmp.Compare(a.eventID, b.eventID))
	})
	return result
}
