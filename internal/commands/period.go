package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/period"
	"github.com/vcollos/dashboard-rn518/internal/runlog"
)

// periodFlags are shared by every command that runs a whole period.
type periodFlags struct {
	progress bool
	noRunLog bool
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.progress, "progress", true, "show a progress bar on stderr")
	cmd.Flags().BoolVar(&f.noRunLog, "no-runlog", false, "do not record the run in the run log")
}

func newPeriodCommand(opts *rootOptions) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "period <period>",
		Short: "Compute the indicators of every active operator for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := runPeriod(cmd, a, args[0], pf)
			if err != nil {
				return err
			}
			return printPeriod(cmd.OutOrStdout(), res)
		},
	}
	pf.register(cmd)

	return cmd
}

func newAverageCommand(opts *rootOptions) *cobra.Command {
	var pf periodFlags
	var withTargets bool

	cmd := &cobra.Command{
		Use:   "average <period>",
		Short: "Average the indicators of every operator with data for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := runPeriod(cmd, a, args[0], pf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			avg, ok := consolidate.Average(res.Records)
			if !ok {
				printNoData(out)
				return nil
			}
			fmt.Fprintf(out, "%s average of %d operators\n", avg.Period(), avg.Operators)
			var targets consolidate.Targets
			if withTargets {
				targets = a.cfg.TargetValues()
			}
			return printRatios(out, avg.Ratios, targets)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&withTargets, "targets", false, "compare averages with the configured targets")

	return cmd
}

func newRankCommand(opts *rootOptions) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "rank <period> <indicator>",
		Short: "Rank operators by one indicator, best first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, err := model.ParseIndicator(strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := runPeriod(cmd, a, args[0], pf)
			if err != nil {
				return err
			}
			return printRanking(cmd.OutOrStdout(), consolidate.Rank(res.Records, ind))
		},
	}
	pf.register(cmd)

	return cmd
}

// runPeriod computes a period, optionally behind a progress bar, and
// records it in the run log.
func runPeriod(cmd *cobra.Command, a *app, label string, pf periodFlags) (indicators.PeriodResult, error) {
	p, err := period.Parse(label)
	if err != nil {
		return indicators.PeriodResult{}, err
	}

	// Progress is called serially, so the bar needs no locking.
	var bar *pb.ProgressBar
	var progress func(done, total int)
	if pf.progress {
		progress = func(done, total int) {
			if bar == nil {
				bar = pb.New(total).SetWriter(cmd.ErrOrStderr()).Start()
			}
			bar.SetCurrent(int64(done))
		}
	}

	svc, err := a.service(progress)
	if err != nil {
		return indicators.PeriodResult{}, err
	}
	res, err := svc.CalculatePeriod(cmd.Context(), p)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return indicators.PeriodResult{}, fmt.Errorf("calculating period %s: %w", p, err)
	}

	if res.Failures != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d operators failed: %v\n", res.Failed, res.Failures)
	}
	if !pf.noRunLog {
		if err := runlog.Append(a.cfg.RunLog.Dir, []runlog.Entry{runlog.FromResult(res, time.Now())}); err != nil {
			logging.LogError(a.log, "run log append failed", err)
		}
	}
	return res, nil
}

func printPeriod(out io.Writer, res indicators.PeriodResult) error {
	fmt.Fprintf(out, "%s: %d included, %d excluded, %d failed\n",
		res.Period, res.Included, res.Excluded, res.Failed)
	if len(res.Records) == 0 {
		printNoData(out)
		return nil
	}

	tw := newTable(out)
	header := []string{"OPERATOR"}
	for _, ind := range model.Indicators() {
		header = append(header, strings.ToUpper(string(ind)))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range res.Records {
		row := []string{r.OperatorID}
		for _, ind := range model.Indicators() {
			row = append(row, formatValue(r.Value(ind)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func printRanking(out io.Writer, ranked []consolidate.Ranked) error {
	if len(ranked) == 0 {
		printNoData(out)
		return nil
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "POS\tOPERATOR\tVALUE")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Position, r.OperatorID, formatValue(r.Value))
	}
	return tw.Flush()
}
