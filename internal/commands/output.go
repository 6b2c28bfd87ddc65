package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

const noData = "no data"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func formatValue(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func printNoData(out io.Writer) {
	fmt.Fprintln(out, noData)
}

// printRatios writes one line per indicator. With targets, each line also
// carries the target and whether it was met.
func printRatios(out io.Writer, r model.Ratios, targets consolidate.Targets) error {
	assessed := make(map[model.Indicator]consolidate.Assessment)
	for _, a := range consolidate.Evaluate(r, targets) {
		assessed[a.Indicator] = a
	}

	tw := newTable(out)
	if targets == nil {
		fmt.Fprintln(tw, "INDICATOR\tNAME\tVALUE\tUNIT")
	} else {
		fmt.Fprintln(tw, "INDICATOR\tNAME\tVALUE\tUNIT\tTARGET\tSTATUS")
	}
	for _, ind := range model.Indicators() {
		info := ind.Info()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s", ind, info.Name, formatValue(r.Value(ind)), info.Unit)
		if targets != nil {
			target, status := "-", "-"
			if a, ok := assessed[ind]; ok {
				target = formatValue(a.Target)
				status = "missed"
				if a.Met {
					status = "met"
				}
			}
			fmt.Fprintf(tw, "\t%s\t%s", target, status)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
