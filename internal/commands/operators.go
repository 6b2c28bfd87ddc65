package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/operators"
)

func newOperatorsCommand(opts *rootOptions) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List active operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			return runOperators(cmd, a, state)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "only operators in this state (UF)")

	return cmd
}

func runOperators(cmd *cobra.Command, a *app, state string) error {
	ops, err := a.src.ActiveOperators(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing operators: %w", err)
	}
	roster := operators.NewService(ops)
	list := roster.All()
	if state != "" {
		list = roster.ByState(strings.ToUpper(state))
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		printNoData(out)
		return nil
	}
	return printOperators(out, list)
}

func printOperators(out io.Writer, list []model.Operator) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tSTATE\tMUNICIPALITY\tNAME")
	for _, op := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", op.ID, op.State, op.Municipality, op.DisplayName())
	}
	return tw.Flush()
}
