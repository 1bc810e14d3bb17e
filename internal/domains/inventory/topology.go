// Package inventory holds the fixed floor, room and bed layout of the hostel.
//
// A Topology is built once at startup and never changes afterwards. Floors
// are small positive integers, rooms are 1-based positions within a floor and
// beds are 1-based positions up to the room capacity.
package inventory

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	ErrUnknownFloor = errors.New("unknown floor")
	ErrUnknownRoom  = errors.New("unknown room")
	ErrInvalidBed   = errors.New("invalid bed")
)

type Topology struct {
	floors map[int][]int
}

// RoomLayout is one room of a floor as exposed over the API.
type RoomLayout struct {
	Room       int    `json:"room"`
	RoomNumber string `json:"roomNumber"`
	Capacity   int    `json:"capacity"`
}

type FloorLayout struct {
	Floor int          `json:"floor"`
	Rooms []RoomLayout `json:"rooms"`
}

// New validates floors and copies it into an immutable Topology.
func New(floors map[int][]int) (Topology, error) {
	if len(floors) == 0 {
		return Topology{}, errors.New("topology has no floors")
	}

	copied := make(map[int][]int, len(floors))

	for floor, capacities := range floors {
		if floor < 1 {
			return Topology{}, fmt.Errorf("floor %d: floor ids must be positive", floor)
		}

		if len(capacities) == 0 {
			return Topology{}, fmt.Errorf("floor %d: no rooms", floor)
		}

		for idx, capacity := range capacities {
			if capacity < 1 {
				return Topology{}, fmt.Errorf("floor %d room %d: capacity must be positive", floor, idx+1)
			}
		}

		copied[floor] = slices.Clone(capacities)
	}

	return Topology{floors: copied}, nil
}

// Default is the six floor layout the hostel was built with.
func Default() Topology {
	standard := []int{2, 2, 3, 3, 2, 2}

	topology, _ := New(map[int][]int{
		1: standard,
		2: standard,
		3: standard,
		4: standard,
		5: standard,
		6: {2, 2, 3, 3},
	})

	return topology
}

// Capacity returns the number of beds in room of floor.
func (t Topology) Capacity(floor, room int) (int, error) {
	capacities, ok := t.floors[floor]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFloor, floor)
	}

	if room < 1 || room > len(capacities) {
		return 0, fmt.Errorf("%w: %d on floor %d", ErrUnknownRoom, room, floor)
	}

	return capacities[room-1], nil
}

// ValidateBed checks 1 <= bed <= Capacity(floor, room).
func (t Topology) ValidateBed(floor, room, bed int) error {
	capacity, err := t.Capacity(floor, room)
	if err != nil {
		return err
	}

	if bed < 1 || bed > capacity {
		return fmt.Errorf("%w: bed %d in a %d sharing room", ErrInvalidBed, bed, capacity)
	}

	return nil
}

// Floors returns the floor ids in ascending order.
func (t Topology) Floors() []int {
	return slices.Sorted(maps.Keys(t.floors))
}

// Rooms returns the room positions of floor, or nil for an unknown floor.
func (t Topology) Rooms(floor int) []int {
	capacities, ok := t.floors[floor]
	if !ok {
		return nil
	}

	rooms := make([]int, len(capacities))
	for idx := range capacities {
		rooms[idx] = idx + 1
	}

	return rooms
}

// Layout lists every floor with its rooms and capacities.
func (t Topology) Layout() []FloorLayout {
	floors := t.Floors()
	layout := make([]FloorLayout, 0, len(floors))

	for _, floor := range floors {
		rooms := make([]RoomLayout, 0, len(t.floors[floor]))

		for idx, capacity := range t.floors[floor] {
			rooms = append(rooms, RoomLayout{
				Room:       idx + 1,
				RoomNumber: RoomNumber(floor, idx+1),
				Capacity:   capacity,
			})
		}

		layout = append(layout, FloorLayout{Floor: floor, Rooms: rooms})
	}

	return layout
}

// RoomNumber is the door number printed on receipts: floor followed by the
// zero padded room, so floor 2 room 3 is "203".
func RoomNumber(floor, room int) string {
	return fmt.Sprintf("%d%02d", floor, room)
}
