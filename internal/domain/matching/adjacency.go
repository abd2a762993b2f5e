package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// AdjacencyMap lists each region's neighbors in fallback priority order.
type AdjacencyMap map[string][]string

// DefaultAdjacency covers the regions the network currently operates in.
// Deployments add regions through a config file, not by editing this table.
func DefaultAdjacency() AdjacencyMap {
	return AdjacencyMap{
		"Maharashtra": {"Gujarat", "Karnataka", "Goa"},
		"Gujarat":     {"Maharashtra", "Rajasthan", "Madhya Pradesh"},
		"Karnataka":   {"Maharashtra", "Tamil Nadu", "Andhra Pradesh"},
	}
}

// LoadAdjacency reads a region adjacency table from a JSON file of the form
// {"Region": ["Neighbor1", "Neighbor2"]}.
func LoadAdjacency(path string) (AdjacencyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read adjacency file: %w", err)
	}
	var m AdjacencyMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse adjacency file %s: %w", path, err)
	}
	return m, nil
}

// Neighbors returns the fallback regions for a region, in order. Unknown
// regions have no neighbors.
func (m AdjacencyMap) Neighbors(region string) []string {
	return m[region]
}
