// Command batch-import loads a CSV batch file of transactions and transfers
// into the ledger, skipping duplicates.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schoolbudget/backend/internal/importer"
	csv_parser "github.com/schoolbudget/backend/internal/importer/parser/csv"
	"github.com/schoolbudget/backend/internal/models"
	"github.com/spf13/cobra"
)

var (
	database string
	file     string
	actor    string
	verbose  bool
)

var cmd = &cobra.Command{
	Use:   "batch-import",
	Short: "Import a CSV batch file into the budget ledger",
	Long: `batch-import loads transactions and transfers from a CSV file into the
budget ledger. Records that already exist or that appear twice in the same
file are skipped. A record that fails validation does not abort the import,
it is reported at the end.

The file needs a header row with the columns kind, project_id, category,
to_project_id, to_category, date, amount, description and reference.`,
	RunE: run,
}

func init() {
	cmd.Flags().StringVarP(&database, "database", "d", "data/gorm.db", "path to the ledger database")
	cmd.Flags().StringVarP(&file, "file", "f", "", "the CSV batch file to import")
	cmd.Flags().StringVarP(&actor, "actor", "a", "", "the user running the import, recorded on all imported transactions")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every skipped and failed record")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("actor")
}

func run(_ *cobra.Command, _ []string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	err := models.Connect(database)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("could not open batch file: %w", err)
	}
	defer f.Close()

	records, err := csv_parser.Parse(f)
	if err != nil {
		return err
	}

	result, err := importer.ImportBatch(models.DB, records, actor)
	if err != nil {
		return err
	}

	if verbose {
		for _, skipped := range result.SkippedDuplicates {
			log.Debug().
				Str("description", skipped.Record.Description).
				Str("reason", skipped.Reason).
				Msg("skipped record")
		}
	}

	for _, recordError := range result.Errors {
		log.Warn().
			Str("description", recordError.Record.Description).
			Str("error", recordError.Error).
			Msg("record not imported")
	}

	fmt.Printf("imported: %d, skipped duplicates: %d, errors: %d\n",
		len(result.Imported), len(result.SkippedDuplicates), len(result.Errors))

	if len(result.Errors) > 0 {
		os.Exit(1)
	}

	return nil
}

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}
