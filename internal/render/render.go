package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"datadesc/internal/describe"
)

// SummaryTable writes summaries as an aligned plain-text table, one row per
// column, in the layout of a describe() printout.
func SummaryTable(w io.Writer, name string, summaries []describe.Summary) error {
	if _, err := fmt.Fprintf(w, "dataset: %s\n", name); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Column, s.Count,
			num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Median), num(s.Q75), num(s.Max))
	}
	return tw.Flush()
}

// num trims trailing zeros so whole numbers print without a decimal tail.
func num(v float64) string {
	out := fmt.Sprintf("%.6f", v)
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}
