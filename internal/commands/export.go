package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/export"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var pf periodFlags
	var withAverage bool

	cmd := &cobra.Command{
		Use:   "export <period> <file>",
		Short: "Write a period's indicators to a .csv or .xlsx file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := export.FormatFromPath(args[1]); err != nil {
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

			var avg *model.ConsolidatedRecord
			if withAverage {
				if c, ok := consolidate.Average(res.Records); ok {
					avg = &c
				}
			}
			if err := export.WriteFile(args[1], res.Records, avg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d operators for %s to %s\n", len(res.Records), res.Period, args[1])
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&withAverage, "average", true, "add a sheet with the period average (xlsx only)")

	return cmd
}
