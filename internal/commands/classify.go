package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/classify"
)

func newClassifyCommand() *cobra.Command {
	var explain bool
	var table bool

	cmd := &cobra.Command{
		Use:   "classify [description...]",
		Short: "Show the category of an account description",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if table {
				return printTable(out)
			}
			if len(args) == 0 {
				return errors.New("a description is required (or use --table)")
			}
			return runClassify(out, strings.Join(args, " "), explain)
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "show the matching pattern and normalized text")
	cmd.Flags().BoolVar(&table, "table", false, "print the classification table in match order")

	return cmd
}

func runClassify(out io.Writer, description string, explain bool) error {
	m := classify.Default().Explain(description)
	if !explain {
		fmt.Fprintln(out, m.Category)
		return nil
	}
	fmt.Fprintf(out, "category:   %s\n", m.Category)
	fmt.Fprintf(out, "pattern:    %s\n", m.Pattern)
	fmt.Fprintf(out, "normalized: %s\n", m.Normalized)
	return nil
}

func printTable(out io.Writer) error {
	for _, r := range classify.DefaultTable() {
		for _, p := range r.Patterns {
			if _, err := fmt.Fprintf(out, "%s\t%s\n", r.Category, p); err != nil {
				return err
			}
		}
	}
	return nil
}
