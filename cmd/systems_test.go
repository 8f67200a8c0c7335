package cmd

import (
	"testing"

	"github.com/benchboard/benchboard/schema"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemQueryFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    schema.SystemQuery
		wantErr string
	}{
		{
			name: "defaults",
			want: schema.SystemQuery{SortField: schema.SortByCreatedAt, SortDirection: schema.SortDesc},
		},
		{
			name: "all filters",
			args: []string{
				"--system-name", "bert", "--task", "text-classification", "--creator", "a@b.c",
				"--dataset", "glue", "--subdataset", "sst2", "--split", "validation",
				"--ids", "x, y,", "--page", "2", "--sort-field", "accuracy", "--sort-direction", "asc",
			},
			want: schema.SystemQuery{
				IDs:        []string{"x", "y"},
				SystemName: "bert",
				Task:       "text-classification",
				Creator:    "a@b.c",
				Datasets: []schema.DatasetIdentity{
					{DatasetName: "glue", SubDatasetName: "sst2", DatasetSplit: "validation"},
				},
				Page:          2,
				SortField:     "accuracy",
				SortDirection: schema.SortAsc,
			},
		},
		{name: "negative page", args: []string{"--page", "-1"}, wantErr: "page must be zero or positive"},
		{name: "bad direction", args: []string{"--sort-direction", "up"}, wantErr: "sort-direction needs to be one of asc or desc"},
		{name: "split without dataset", args: []string{"--split", "test"}, wantErr: "require --dataset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := pflag.NewFlagSet("systems", pflag.ContinueOnError)
			addSystemQueryFlags(flags)
			require.NoError(t, flags.Parse(tt.args))

			got, err := systemQueryFromFlags(flags)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
