package semantic

import (
	"slices"
	"strings"
)

// UsageSet is the set of identifiers referenced inside one implementation
// block. Besides plain names it holds qualified entries such as "self.count"
// recorded for field accesses on the receiver.
type UsageSet map[string]struct{}

// Add records name unless it is reserved or empty.
func (s UsageSet) Add(name string) {
	if name == "" || IsReserved(name) {
		return
	}
	s[name] = struct{}{}
}

// Contains reports exact membership.
func (s UsageSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Uses reports whether field is referenced, either directly or through a
// qualified entry containing "self.field" or "self?.field".
//
// Example:
//
//	set := UsageSet{}
//	set.Add("self.total")
//	set.Uses("total") // true
func (s UsageSet) Uses(field string) bool {
	if s.Contains(field) {
		return true
	}
	direct := "self." + field
	tried := "self?." + field
	for entry := range s {
		if strings.Contains(entry, direct) || strings.Contains(entry, tried) {
			return true
		}
	}
	return false
}

// Merge adds every entry of other to s.
func (s UsageSet) Merge(other UsageSet) {
	for entry := range other {
		s[entry] = struct{}{}
	}
}

// Sorted returns the entries in lexical order.
func (s UsageSet) Sorted() []string {
	entries := make([]string, 0, len(s))
	for entry := range s {
		entries = append(entries, entry)
	}
	slices.Sort(entries)
	return entries
}

// Usage maps an implementation target type name to the identifiers its
// implementation blocks reference. Multiple blocks for one target are merged.
type Usage map[string]UsageSet

// For returns the usage set of target.
func (u Usage) For(target string) (UsageSet, bool) {
	set, ok := u[target]
	return set, ok
}

// All returns the union of every target's usage.
func (u Usage) All() UsageSet {
	all := UsageSet{}
	for _, set := range u {
		all.Merge(set)
	}
	return all
}

func (u Usage) merge(target string, set UsageSet) {
	existing, ok := u[target]
	if !ok {
		u[target] = set
		return
	}
	existing.Merge(set)
}
