package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"syskit/internal/csvdb"
)

var (
	csv2dbTable string
	csv2dbDB    string
	csv2dbChunk int
)

// csv2dbCmd imports CSV files into a SQLite database.
var csv2dbCmd = &cobra.Command{
	Use:   "csv2db FILE.csv...",
	Short: "Import CSV files into a SQLite database",
	Long: `Loads each CSV into a SQLite table, inferring column types from the
leading rows. The table is created if it does not exist and rows are
appended otherwise. Rows are inserted in chunked transactions.

Examples:
  syskit csv2db users.csv
  syskit csv2db --db all.db --table events part1.csv part2.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCSV2DB,
}

func init() {
	csv2dbCmd.Flags().StringVar(&csv2dbTable, "table", "", "Table name (default: CSV basename)")
	csv2dbCmd.Flags().StringVar(&csv2dbDB, "db", "", "Database path (default: CSV path with .db extension)")
	csv2dbCmd.Flags().IntVar(&csv2dbChunk, "chunk-size", 0, "Rows per transaction (default from config)")
}

func runCSV2DB(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	chunk := csv2dbChunk
	if chunk <= 0 {
		chunk = cfg.Convert.ChunkSize
	}

	for _, path := range args {
		dbPath := csv2dbDB
		if dbPath == "" {
			dbPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
		}
		imp := &csvdb.Importer{
			DBPath:    dbPath,
			Table:     csv2dbTable,
			ChunkSize: chunk,
		}
		stats, err := imp.Import(ctx, path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Printf("%s: %d rows into %s.%s (%d columns, %d chunks, %s)\n",
			path, stats.Rows, dbPath, stats.Table, len(stats.Columns), stats.Chunks,
			stats.Duration.Round(time.Millisecond))
	}
	return nil
}
