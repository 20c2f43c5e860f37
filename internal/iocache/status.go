package iocache

import (
	"fmt"
	"sort"

	"github.com/huangsam/drawbias/schema"
)

// PrintCacheStatus prints knowledge cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintStoreStatus prints ledger store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	fmt.Printf("Draws: %d (%d test)\n", status.TotalDraws, status.TestDraws)
	if status.TotalDraws > 0 {
		fmt.Printf("Coverage: %s .. %s\n", status.OldestDraw, status.LatestDraw)
	}
	fmt.Printf("Hypotheses: %d\n", status.Hypotheses)
	fmt.Printf("Outcomes: %d\n", status.Outcomes)
	fmt.Printf("Modes: %d\n", status.Modes)
	fmt.Printf("Relations: %d (%d open events)\n", status.Relations, status.OpenEvents)

	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	fmt.Println("Table Sizes:")
	for _, table := range tables {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
