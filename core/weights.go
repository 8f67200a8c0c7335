package core

import "github.com/benchboard/benchboard/schema"

// DefaultWeight applies to any dimension value without an explicit weight.
const DefaultWeight = 1.0

// ResolveWeight looks up the weight of a dimension value. It returns
// DefaultWeight when the dimension has no table or the value is not listed.
func ResolveWeight(weights map[schema.WeightDimension]map[string]float64, dim schema.WeightDimension, value string) float64 {
	table, ok := weights[dim]
	if !ok {
		return DefaultWeight
	}
	if w, ok := table[value]; ok {
		return w
	}
	return DefaultWeight
}
