package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dplace2cldf/internal/etl"
	"dplace2cldf/internal/export"
	"dplace2cldf/internal/storage"
)

func convertCmd(a *app) *cobra.Command {
	var exportKind, exportDSN string

	c := &cobra.Command{
		Use:   "convert [SOURCE [TARGET]]",
		Short: "Convert every dataset below SOURCE into TARGET/<dataset>",
		Long: "Convert reads SOURCE/datasets/<ID>/ for every dataset, writes one CLDF\n" +
			"StructureDataset per dataset below TARGET and validates it.\n" +
			"SOURCE defaults to .. and TARGET to ../cldf.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.cfg.Source.Root = args[0]
			}
			if len(args) > 1 {
				a.cfg.Target.Root = args[1]
			}
			if cmd.Flags().Changed("export-kind") {
				a.cfg.Export.Kind = exportKind
			}
			if cmd.Flags().Changed("export-dsn") {
				a.cfg.Export.DSN = exportDSN
			}
			if err := a.checkConfig(cmd); err != nil {
				return err
			}

			flush := setupMetrics(a.cfg)
			defer flush()

			res, err := etl.Run(cmd.Context(), etl.Options{
				Job:        a.cfg.Job,
				SourceRoot: a.cfg.Source.Root,
				TargetRoot: a.cfg.Target.Root,
				Export: export.Config{
					Kind:        a.cfg.Export.Kind,
					DSN:         a.cfg.Export.DSN,
					TablePrefix: a.cfg.Export.TablePrefix,
					BatchSize:   a.cfg.Export.BatchSize,
				},
			})
			for _, ds := range res.Datasets {
				rows := 0
				for _, t := range ds.Report.Tables {
					rows += t.Rows
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d tables\t%d rows\t%s\n", ds.ID, len(ds.Report.Tables), rows, ds.Dir)
			}
			return err
		},
	}
	c.Flags().StringVar(&exportKind, "export-kind", "", "also load each dataset into a database: "+strings.Join(storage.ListKinds(), "|"))
	c.Flags().StringVar(&exportDSN, "export-dsn", "", "database DSN for --export-kind")
	return c
}
