package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/parquet"
	"github.com/benchboard/benchboard/schema"
)

// ExecuteStoreExport exports every stored system to a Parquet file.
func ExecuteStoreExport(ctx context.Context, w io.Writer, store contract.SystemStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalSystems == 0 {
		return errors.New("no systems found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total systems: %d\n", status.TotalSystems)

	systems, _, err := store.FindSystems(ctx, schema.SystemQuery{SortField: schema.SortByCreatedAt, SortDirection: schema.SortAsc})
	if err != nil {
		return fmt.Errorf("failed to retrieve systems: %w", err)
	}

	rows, err := parquet.ConvertSystems(systems)
	if err != nil {
		return fmt.Errorf("failed to convert systems: %w", err)
	}
	if err := parquet.WriteSystemsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write systems: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d systems to: %s\n", len(rows), outputFile)
	return nil
}
