package cli

import (
	"fmt"
	"log"
	"os"

	"exam-simulator/internal/bank"
	"exam-simulator/internal/config"
	"exam-simulator/internal/domain"
	"exam-simulator/internal/infra/excel"
	pgloader "exam-simulator/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewImportCmd converts a spreadsheet into a YAML bank and/or the Postgres bank.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		file   string
		sheet  string
		out    string
		toDB   bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from an .xlsx or .csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && !toDB {
				return fmt.Errorf("nothing to do: pass --out and/or --db")
			}
			importCfg := excel.DefaultImportConfig()
			importCfg.FilePath = file
			if sheet != "" {
				importCfg.SheetName = sheet
			}
			report, err := excel.Import(importCfg)
			if err != nil {
				return err
			}
			for _, msg := range report.Errors {
				log.Printf("skipped %s", msg)
			}
			log.Printf("processed %d rows: %d imported, %d skipped, %d tests",
				report.TotalProcessed, report.Imported, report.Skipped, len(report.Tests))
			if strict && len(report.Errors) > 0 {
				return fmt.Errorf("%d rows rejected", len(report.Errors))
			}
			if len(report.Tests) == 0 {
				return fmt.Errorf("no questions imported from %s", file)
			}

			if out != "" {
				if err := writeBankFile(out, report.Tests); err != nil {
					return err
				}
				log.Printf("wrote %s", out)
			}
			if toDB {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				db, err := openBunDB(cfg.Postgres.URL)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := migrateDB(cmd.Context(), db); err != nil {
					return err
				}
				writer := pgloader.NewTestWriter(db)
				if err := writer.SaveTests(cmd.Context(), report.Tests); err != nil {
					return err
				}
				total, err := writer.Count(cmd.Context())
				if err != nil {
					return err
				}
				log.Printf("saved %d tests to postgres (%d stored)", len(report.Tests), total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "spreadsheet to import (.xlsx or .csv)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name (default Sheet1)")
	cmd.Flags().StringVar(&out, "out", "", "write the imported bank as YAML to this path")
	cmd.Flags().BoolVar(&toDB, "db", false, "upsert the imported tests into postgres")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any row is rejected")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeBankFile(path string, tests []domain.Test) error {
	byID := make(map[domain.TestID]domain.Test, len(tests))
	for _, t := range tests {
		byID[t.ID] = t
	}
	data, err := bank.Marshal(byID)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
