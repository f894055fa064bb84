package booking

import "sort"

// RankSpots orders candidate spots by preference. Bigger spots first, ties
// broken by name so runs are deterministic.
func RankSpots(spots []Spot) []Spot {
	out := make([]Spot, len(spots))
	copy(out, spots)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity > out[j].Capacity
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FilterByType keeps only spots of the given type.
func FilterByType(spots []Spot, t SpotType) []Spot {
	out := make([]Spot, 0, len(spots))
	for _, s := range spots {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
