package core

import (
	"testing"

	"github.com/benchboard/benchboard/schema"
	"github.com/stretchr/testify/assert"
)

func TestResolveWeight(t *testing.T) {
	weights := map[schema.WeightDimension]map[string]float64{
		schema.DatasetDimension:        {"SST2": 2.0, "CoLA": 0.0},
		schema.TargetLanguageDimension: {"de": 0.5},
	}

	tests := []struct {
		name  string
		table map[schema.WeightDimension]map[string]float64
		dim   schema.WeightDimension
		value string
		want  float64
	}{
		{"listed value", weights, schema.DatasetDimension, "SST2", 2.0},
		{"explicit zero", weights, schema.DatasetDimension, "CoLA", 0.0},
		{"unlisted value", weights, schema.DatasetDimension, "MNLI", DefaultWeight},
		{"absent dimension", weights, schema.TaskDimension, "text-classification", DefaultWeight},
		{"other dimension", weights, schema.TargetLanguageDimension, "de", 0.5},
		{"empty value", weights, schema.SourceLanguageDimension, "", DefaultWeight},
		{"nil table", nil, schema.DatasetDimension, "SST2", DefaultWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveWeight(tt.table, tt.dim, tt.value))
		})
	}
}
