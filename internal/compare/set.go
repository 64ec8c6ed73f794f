// Package compare keeps the records a user picked for side-by-side comparison.
package compare

import (
	"fmt"

	"github.com/Veraticus/tarifa/internal/model"
)

// MinRecords is the smallest selection that can be compared.
const MinRecords = 2

// Action describes the state of the "compare" action for the current selection.
type Action struct {
	Label   string
	Count   int
	Enabled bool
}

// ActionFor returns the compare action for a selection of count records:
// enabled and labeled with the count from two records on, disabled with a
// zero label otherwise.
func ActionFor(count int) Action {
	if count >= MinRecords {
		return Action{Enabled: true, Count: count, Label: fmt.Sprintf("Compare (%d)", count)}
	}
	return Action{Count: count, Label: "Compare (0)"}
}

// Listener receives the compare action after every membership change.
type Listener func(Action)

// Set is an ordered selection of records, unique by structural equality.
// Membership uses each record's synthetic key, which hashes every field, so
// two records fetched separately with identical values count as one.
type Set struct {
	keys      map[string]struct{}
	records   []model.RateRecord
	listeners []Listener
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// OnChange registers a listener called after each membership change.
func (s *Set) OnChange(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Toggle removes record if a structurally equal one is a member, otherwise
// appends it. It reports whether record is a member afterwards.
func (s *Set) Toggle(record model.RateRecord) bool {
	if s.Contains(record) {
		s.Exclude(record)
		return false
	}
	s.Include(record)
	return true
}

// Include appends record unless an equal record is already a member.
func (s *Set) Include(record model.RateRecord) {
	key := record.Key()
	if _, ok := s.keys[key]; ok {
		return
	}
	s.keys[key] = struct{}{}
	s.records = append(s.records, record)
	s.notify()
}

// Exclude removes every member equal to record.
func (s *Set) Exclude(record model.RateRecord) {
	key := record.Key()
	if _, ok := s.keys[key]; !ok {
		return
	}
	delete(s.keys, key)

	kept := make([]model.RateRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.Key() != key {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.notify()
}

// Contains reports whether an equal record is a member.
func (s *Set) Contains(record model.RateRecord) bool {
	_, ok := s.keys[record.Key()]
	return ok
}

// Clear empties the set.
func (s *Set) Clear() {
	if len(s.records) == 0 {
		return
	}
	s.keys = make(map[string]struct{})
	s.records = nil
	s.notify()
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.records)
}

// Records returns the members in selection order.
func (s *Set) Records() []model.RateRecord {
	out := make([]model.RateRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Action returns the compare action for the current selection.
func (s *Set) Action() Action {
	return ActionFor(len(s.records))
}

func (s *Set) notify() {
	action := s.Action()
	for _, l := range s.listeners {
		l(action)
	}
}
