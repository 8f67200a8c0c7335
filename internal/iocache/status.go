package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
)

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus, useColors bool) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Status: %s\n", contract.StatusLabel(status.Connected, useColors))
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Systems: %d\n", status.TotalSystems)
	_, _ = fmt.Fprintf(w, "Private Systems: %d\n", status.PrivateSystems)
	_, _ = fmt.Fprintf(w, "Total Outputs: %d\n", status.TotalOutputs)
	if status.TotalSystems > 0 {
		_, _ = fmt.Fprintf(w, "Last Created: %s\n", status.LastCreatedTime.Format(contract.DateTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Created: %s\n", status.OldestCreateTime.Format(contract.DateTimeFormat))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
