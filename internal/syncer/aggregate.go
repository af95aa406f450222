// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncer

// orderedSet keeps the first insertion order of its values.
type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(values ...string) {
	for _, value := range values {
		if _, ok := s.seen[value]; ok {
			continue
		}
		s.seen[value] = struct{}{}
		s.values = append(s.values, value)
	}
}

// list never returns nil so that published events always carry an array.
func (s *orderedSet) list() []string {
	return append(make([]string, 0, len(s.values)), s.values...)
}

// aggregate accumulates the deltas of every account processed in a run.
type aggregate struct {
	newTransactions     *orderedSet
	matchedTransactions *orderedSet
	updatedAccounts     *orderedSet
	success             bool
}

func newAggregate() *aggregate {
	return &aggregate{
		newTransactions:     newOrderedSet(),
		matchedTransactions: newOrderedSet(),
		updatedAccounts:     newOrderedSet(),
	}
}
