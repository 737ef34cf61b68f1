package models

import "strings"

// Pair is an ordered (source currency, destination currency) combination.
type Pair struct {
	Source      string
	Destination string
}

// Key returns the canonical "<SRC>_<DST>" key for the pair.
func (p Pair) Key() string {
	return PairKey(p.Source, p.Destination)
}

// PairSet is the fixed cross product of a source-currency set and a
// destination-currency set. It is configuration, not runtime state; the
// poller and the all-rates queries use it to know which pairs are in scope.
type PairSet struct {
	Sources      []string
	Destinations []string
}

// NewPairSet builds a PairSet with all codes normalized to uppercase.
func NewPairSet(sources, destinations []string) PairSet {
	return PairSet{
		Sources:      normalizeCodes(sources),
		Destinations: normalizeCodes(destinations),
	}
}

// Pairs expands the cross product in a stable source-major,
// destination-minor order. Pairs where source equals destination are
// always skipped.
func (s PairSet) Pairs() []Pair {
	pairs := make([]Pair, 0, len(s.Sources)*len(s.Destinations))
	for _, src := range s.Sources {
		for _, dst := range s.Destinations {
			if src == dst {
				continue
			}
			pairs = append(pairs, Pair{Source: src, Destination: dst})
		}
	}
	return pairs
}

// DestinationsFor returns the in-scope destinations for one base currency,
// skipping the base itself.
func (s PairSet) DestinationsFor(base string) []string {
	base = strings.ToUpper(base)
	out := make([]string, 0, len(s.Destinations))
	for _, dst := range s.Destinations {
		if dst == base {
			continue
		}
		out = append(out, dst)
	}
	return out
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
