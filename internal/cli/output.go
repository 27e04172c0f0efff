package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// table writes aligned columns under a header and a dashed rule.
type table struct {
	tw *tabwriter.Writer
}

func newTable(out io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(t.tw, strings.Join(headers, "\t"))
	fmt.Fprintln(t.tw, strings.Join(rule, "\t"))
	return t
}

func (t *table) row(cols ...any) {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// money formats an amount with thousands separators and two decimals.
func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printSectionErrors lists the dashboard sections that could not be loaded.
func printSectionErrors(out io.Writer, errs map[string]error) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "warning: could not load %s: %v\n", name, errs[name])
	}
}

// printSaved reports where a download landed and how large it is.
func printSaved(out io.Writer, what, path string) {
	if fi, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Saved %s to %s (%s)\n", what, path, humanize.Bytes(uint64(fi.Size())))
		return
	}
	fmt.Fprintf(out, "Saved %s to %s\n", what, path)
}
