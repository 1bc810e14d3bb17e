package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type topologyFile struct {
	Floors []struct {
		Floor int   `yaml:"floor"`
		Rooms []int `yaml:"rooms"`
	} `yaml:"floors"`
}

// Load reads a topology file:
//
//	floors:
//	  - floor: 1
//	    rooms: [2, 2, 3, 3, 2, 2]
func Load(path string) (Topology, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("failed to read topology file: %w", err)
	}

	return Parse(raw)
}

func Parse(raw []byte) (Topology, error) {
	var file topologyFile

	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Topology{}, fmt.Errorf("failed to parse topology file: %w", err)
	}

	floors := make(map[int][]int, len(file.Floors))

	for _, entry := range file.Floors {
		if _, dup := floors[entry.Floor]; dup {
			return Topology{}, fmt.Errorf("floor %d declared twice", entry.Floor)
		}

		floors[entry.Floor] = entry.Rooms
	}

	return New(floors)
}
