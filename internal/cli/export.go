package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/export"
	"dplace2cldf/internal/storage"
	_ "dplace2cldf/internal/storage/all"
)

func exportCmd(a *app) *cobra.Command {
	var (
		kind, dsn, prefix, dataset string
		batch                      int
	)

	c := &cobra.Command{
		Use:   "export DIR",
		Short: "Load a written CLDF dataset into a SQL database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			cfg := export.Config{
				Kind:        a.cfg.Export.Kind,
				DSN:         a.cfg.Export.DSN,
				TablePrefix: a.cfg.Export.TablePrefix,
				BatchSize:   a.cfg.Export.BatchSize,
			}
			if cmd.Flags().Changed("kind") {
				cfg.Kind = kind
			}
			if cmd.Flags().Changed("dsn") {
				cfg.DSN = dsn
			}
			if cmd.Flags().Changed("prefix") {
				cfg.TablePrefix = prefix
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = batch
			}
			if dataset == "" {
				dataset = filepath.Base(filepath.Clean(dir))
			}

			ds, err := cldf.Open(dir)
			if err != nil {
				return err
			}
			if err := ds.Validate(); err != nil {
				return err
			}
			res, err := export.Export(cmd.Context(), ds, dataset, cfg)
			if err != nil {
				return err
			}
			for _, t := range res.Tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\n", t.Name, t.Rows)
			}
			return nil
		},
	}
	c.Flags().StringVar(&kind, "kind", "", "storage backend: "+strings.Join(storage.ListKinds(), "|"))
	c.Flags().StringVar(&dsn, "dsn", "", "database DSN")
	c.Flags().StringVar(&prefix, "prefix", "", "table name prefix")
	c.Flags().StringVar(&dataset, "dataset", "", "dataset name used in table names (default: base name of DIR)")
	c.Flags().IntVar(&batch, "batch-size", 0, "rows per insert batch")
	return c
}
