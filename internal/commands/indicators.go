package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/period"
)

func newIndicatorsCommand(opts *rootOptions) *cobra.Command {
	var withTargets bool

	cmd := &cobra.Command{
		Use:   "indicators <operator> <period>",
		Short: "Compute the indicators of one operator for a period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			return runIndicators(cmd, a, args[0], args[1], withTargets)
		},
	}

	cmd.Flags().BoolVar(&withTargets, "targets", false, "compare values with the configured targets")

	return cmd
}

func runIndicators(cmd *cobra.Command, a *app, operatorID, label string, withTargets bool) error {
	p, err := period.Parse(label)
	if err != nil {
		return err
	}
	svc, err := a.service(nil)
	if err != nil {
		return err
	}

	rec, ok, err := svc.CalculateIndicators(cmd.Context(), operatorID, p)
	if err != nil {
		return fmt.Errorf("calculating indicators: %w", err)
	}
	out := cmd.OutOrStdout()
	if !ok {
		printNoData(out)
		return nil
	}

	fmt.Fprintf(out, "operator %s, %s", rec.OperatorID, rec.Period())
	if rec.CoveredLives != nil {
		fmt.Fprintf(out, ", %d covered lives", *rec.CoveredLives)
	}
	fmt.Fprintln(out)

	var targets consolidate.Targets
	if withTargets {
		targets = a.cfg.TargetValues()
	}
	return printRatios(out, rec.Ratios, targets)
}
