package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for system storage.
	DatabaseBackend string

	// ViewOp represents a single aggregation operation inside a view.
	ViewOp string

	// WeightDimension names one of the aggregation weight tables of a benchmark.
	WeightDimension string

	// SortDirection is the ordering applied to system listings.
	SortDirection string
)

// Column names of the normalized benchmark table.
const (
	ColSystemName     = "system_name"
	ColDatasetName    = "dataset_name"
	ColSubDatasetName = "sub_dataset_name"
	ColDatasetSplit   = "dataset_split"
	ColMetric         = "metric"
	ColMetricWeight   = "metric_weight"
	ColScore          = "score"
)

// DefaultSplit is used when a dataset spec omits dataset_split.
const DefaultSplit = "test"

// OrigView is the implicit view holding the unmodified normalized table.
const OrigView = "orig"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All view operations supported.
const (
	OpMean     ViewOp = "mean"
	OpSum      ViewOp = "sum"
	OpMultiply ViewOp = "multiply"
)

// All weight dimensions supported.
const (
	DatasetDimension        WeightDimension = "dataset"
	TaskDimension           WeightDimension = "task"
	TargetLanguageDimension WeightDimension = "target_language"
	SourceLanguageDimension WeightDimension = "source_language"
)

// SortByCreatedAt is the default sort field of system listings.
// Any other sort field names an overall metric.
const SortByCreatedAt = "created_at"

// All sort directions supported.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc" // default
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllWeightDimensions lists every dimension a benchmark may weight.
var AllWeightDimensions = []WeightDimension{
	DatasetDimension,
	TaskDimension,
	TargetLanguageDimension,
	SourceLanguageDimension,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidViewOps lists all valid view operations.
var ValidViewOps = map[ViewOp]struct{}{
	OpMean:     {},
	OpSum:      {},
	OpMultiply: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSortDirections lists all valid sort directions.
var ValidSortDirections = map[SortDirection]struct{}{
	SortAsc:  {},
	SortDesc: {},
}
