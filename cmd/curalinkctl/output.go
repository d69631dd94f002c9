package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// table prints rows as aligned columns.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(r, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// footer reports the match count when the archive gave one.
func footer(w io.Writer, shown, total, archiveRequests int) {
	if total >= 0 {
		_, _ = fmt.Fprintf(w, "\n%d of %d shown", shown, total)
	} else {
		_, _ = fmt.Fprintf(w, "\n%d shown", shown)
	}
	if archiveRequests > 0 {
		_, _ = fmt.Fprintf(w, " (%d archive requests)", archiveRequests)
	}
	_, _ = fmt.Fprintln(w)
}
