package inventory

import "slices"

// Occupant is a guest currently holding a bed.
type Occupant struct {
	Bed  int    `json:"bed"`
	Name string `json:"name"`
}

// Partition splits 1..capacity into the occupied beds and the free ones.
// Occupants outside the range are dropped, and a bed listed twice is reported
// once, so the two results always cover the range exactly.
func Partition(capacity int, occupants []Occupant) (booked []Occupant, available []int) {
	taken := make(map[int]bool, len(occupants))
	booked = make([]Occupant, 0, len(occupants))

	for _, occupant := range occupants {
		if occupant.Bed < 1 || occupant.Bed > capacity || taken[occupant.Bed] {
			continue
		}

		taken[occupant.Bed] = true

		booked = append(booked, occupant)
	}

	slices.SortFunc(booked, func(a, b Occupant) int { return a.Bed - b.Bed })

	available = make([]int, 0, capacity-len(booked))

	for bed := 1; bed <= capacity; bed++ {
		if !taken[bed] {
			available = append(available, bed)
		}
	}

	return booked, available
}
