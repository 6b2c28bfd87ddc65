package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

var (
	improvedColor = color.New(color.FgGreen)
	worsenedColor = color.New(color.FgRed)
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "history <operator>",
		Short: "Show an operator's indicators over time with trends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			return runHistory(cmd, a, args[0])
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured trend arrows")

	return cmd
}

func runHistory(cmd *cobra.Command, a *app, operatorID string) error {
	svc, err := a.service(nil)
	if err != nil {
		return err
	}
	history, err := svc.BuildHistory(cmd.Context(), operatorID)
	if err != nil {
		return fmt.Errorf("building history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(history) == 0 {
		printNoData(out)
		return nil
	}
	if err := printHistory(out, history); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return printTrends(out, consolidate.Trends(history))
}

func printHistory(out io.Writer, history []model.IndicatorRecord) error {
	tw := newTable(out)
	header := []string{"PERIOD"}
	for _, ind := range model.Indicators() {
		header = append(header, strings.ToUpper(string(ind)))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range history {
		row := []string{r.Period().String()}
		for _, ind := range model.Indicators() {
			row = append(row, formatValue(r.Value(ind)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func printTrends(out io.Writer, trends []consolidate.Trend) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "INDICATOR\tCURRENT\tPREVIOUS\tVARIATION\tTREND")
	for _, t := range trends {
		prev, variation := "-", "-"
		if t.Previous != nil {
			prev = formatValue(*t.Previous)
		}
		if t.Variation != nil {
			variation = formatValue(*t.Variation) + "%"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Indicator, formatValue(t.Current), prev, variation, trendArrow(t))
	}
	return tw.Flush()
}

func trendArrow(t consolidate.Trend) string {
	switch {
	case t.Previous == nil:
		return "-"
	case t.Improved == nil:
		return "="
	}
	arrow := "↓"
	if t.Current > *t.Previous {
		arrow = "↑"
	}
	if *t.Improved {
		return improvedColor.Sprint(arrow)
	}
	return worsenedColor.Sprint(arrow)
}
