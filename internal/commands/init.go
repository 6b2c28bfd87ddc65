package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vcollos/dashboard-rn518/internal/config"
	"github.com/vcollos/dashboard-rn518/internal/operators"
)

func newInitCommand() *cobra.Command {
	var driver string
	var ledgerFormat string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new indicator project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, driver, ledgerFormat, force)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", config.DriverFiles, "data source driver (files or postgres)")
	cmd.Flags().StringVar(&ledgerFormat, "ledger-format", "canonical", "ledger file format (canonical or ans)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration")

	return cmd
}

func runInit(out io.Writer, dir, driver, ledgerFormat string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if !force {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking config: %w", err)
		}
	}

	cfg := config.Default()
	cfg.DataSource.Driver = driver
	cfg.DataSource.LedgerFormat = ledgerFormat
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir := filepath.Join(dir, cfg.DataSource.Dir)
	dirs := []string{
		filepath.Join(dataDir, "ledger"),
		filepath.Join(dir, cfg.RunLog.Dir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Empty roster with header so the files source can load right away.
	if err := operators.NewService(nil).Save(dataDir); err != nil {
		return fmt.Errorf("writing operator roster: %w", err)
	}

	gitignore := ".env\n" + cfg.RunLog.Dir + "/\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized RN 518 project at %s\n", dir)
	return nil
}
