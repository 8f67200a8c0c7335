package cmd

import (
	"fmt"

	"github.com/benchboard/benchboard/core"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// systemsCmd lists stored systems.
var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List submitted systems",
	Long: `List stored systems with optional filters, sorting and paging.

The CLI has full store access, so private systems are listed as well.

Examples:
  # Newest systems evaluated on SST2
  benchboard systems --dataset SST2

  # Best accuracy first, second page
  benchboard systems --sort-field accuracy --page 1 --page-size 10`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, err := systemQueryFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		query.PageSize = cfg.PageSize
		return core.ExecuteSystems(rootCtx, cfg, storeManager, query)
	},
}

// addSystemQueryFlags defines the filter, sort and paging flags of the systems command.
func addSystemQueryFlags(flags *pflag.FlagSet) {
	flags.Int("page", 0, "Zero-based page number")
	flags.String("system-name", "", "Filter by a substring of the system name")
	flags.String("task", "", "Filter by task name")
	flags.String("dataset", "", "Filter by dataset name")
	flags.String("subdataset", "", "Filter by sub-dataset name (requires --dataset)")
	flags.String("split", "", "Filter by dataset split (requires --dataset)")
	flags.String("creator", "", "Filter by creator email")
	flags.String("ids", "", "Comma-separated list of system ids")
	flags.String("sort-field", schema.SortByCreatedAt, "Sort by created_at or an overall metric name")
	flags.String("sort-direction", string(schema.SortDesc), "Sort direction: asc or desc")
}

// systemQueryFromFlags builds a store query from the systems command filters.
func systemQueryFromFlags(flags *pflag.FlagSet) (schema.SystemQuery, error) {
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	page, _ := flags.GetInt("page")
	if page < 0 {
		return schema.SystemQuery{}, fmt.Errorf("page must be zero or positive (received %d)", page)
	}

	dir := schema.SortDirection(get("sort-direction"))
	if _, ok := schema.ValidSortDirections[dir]; !ok {
		return schema.SystemQuery{}, fmt.Errorf("sort-direction needs to be one of asc or desc (received %q)", dir)
	}

	query := schema.SystemQuery{
		IDs:           contract.SplitList(get("ids")),
		SystemName:    get("system-name"),
		Task:          get("task"),
		Creator:       get("creator"),
		Page:          page,
		SortField:     get("sort-field"),
		SortDirection: dir,
	}

	dataset := get("dataset")
	if dataset == "" && (get("subdataset") != "" || get("split") != "") {
		return schema.SystemQuery{}, fmt.Errorf("--subdataset and --split require --dataset")
	}
	if dataset != "" {
		query.Datasets = []schema.DatasetIdentity{{
			DatasetName:    dataset,
			SubDatasetName: get("subdataset"),
			DatasetSplit:   get("split"),
		}}
	}
	return query, nil
}
