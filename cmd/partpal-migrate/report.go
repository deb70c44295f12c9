package main

import (
	"fmt"
	"io"

	"partpal/internal/migrate"
)

// printReport writes the human summary; the JSON log lines carry the detail.
func printReport(w io.Writer, rep *migrate.Report) {
	fmt.Fprintf(w, "run %s\n", rep.RunID)
	for _, t := range rep.Tables {
		fmt.Fprintf(w, "  %-18s %d/%d migrated", t.Table, t.Migrated, t.Attempted)
		if n := t.Failed(); n > 0 {
			fmt.Fprintf(w, ", %d failed", n)
		}
		fmt.Fprintln(w)
		for _, o := range t.FailedRows() {
			fmt.Fprintf(w, "    ! %s: %v\n", o.ID, o.Err)
		}
	}
	attempted, migrated := rep.Totals()
	fmt.Fprintf(w, "total %d/%d migrated\n", migrated, attempted)

	if len(rep.FinalCounts) > 0 {
		fmt.Fprintln(w, "target counts:")
		for _, t := range migrate.DefaultTables {
			if n, ok := rep.FinalCounts[t.Name]; ok {
				fmt.Fprintf(w, "  %-18s %d\n", t.Name, n)
			}
		}
	}
	for _, ce := range rep.CountErrors {
		fmt.Fprintf(w, "count %s on %s failed: %v\n", ce.Table, ce.Store, ce.Err)
	}
	for _, m := range rep.Mismatches {
		fmt.Fprintf(w, "mismatch %s: source=%d target=%d\n", m.Table, m.Source, m.Target)
	}
}
