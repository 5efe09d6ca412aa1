// Package csvdb streams CSV files into SQLite tables. The CSV is read in
// chunks, each chunk appended inside its own transaction, so arbitrarily
// large files import in bounded memory.
package csvdb

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"syskit/internal/inspect"
	"syskit/internal/logging"
)

// DefaultChunkSize is the number of rows per transaction.
const DefaultChunkSize = 50000

// sniffRows caps how many leading rows feed column type inference.
const sniffRows = 1000

// Importer loads CSV files into one SQLite database.
type Importer struct {
	DBPath    string
	Table     string // defaults to the CSV basename
	ChunkSize int
}

// ImportStats summarizes a finished import.
type ImportStats struct {
	Table    string
	Columns  []string
	Rows     int64
	Chunks   int
	Duration time.Duration
}

// Import reads the CSV at path and appends it to the table. The first
// record is the header; column types are sniffed from the leading rows.
func (imp *Importer) Import(ctx context.Context, path string) (*ImportStats, error) {
	log := logging.Get(logging.CategoryConvert)

	table := imp.Table
	if table == "" {
		table = tableName(path)
	}
	chunkSize := imp.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns, err := sanitizeColumns(header)
	if err != nil {
		return nil, err
	}

	// Buffer the leading rows for type sniffing, then replay them as the
	// first inserts.
	var buffered [][]string
	for len(buffered) < sniffRows {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, raggedError(err)
		}
		buffered = append(buffered, record)
	}
	types := sniffTypes(len(columns), buffered)

	if err := os.MkdirAll(filepath.Dir(imp.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", imp.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", imp.DBPath, err)
	}
	defer db.Close()

	if err := createTable(ctx, db, table, columns, types); err != nil {
		return nil, err
	}

	stats := &ImportStats{Table: table, Columns: columns}
	start := time.Now()
	insertSQL := insertStatement(table, columns)

	chunk := make([][]string, 0, chunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := insertChunk(ctx, db, insertSQL, chunk, types); err != nil {
			return err
		}
		stats.Rows += int64(len(chunk))
		stats.Chunks++
		log.Infof("processed chunk %d (%d rows) into %s", stats.Chunks, len(chunk), table)
		chunk = chunk[:0]
		return nil
	}

	feed := func(record []string) error {
		if len(record) != len(columns) {
			return fmt.Errorf("row has %d fields, header has %d", len(record), len(columns))
		}
		chunk = append(chunk, append([]string(nil), record...))
		if len(chunk) >= chunkSize {
			return flush()
		}
		return nil
	}

	for _, record := range buffered {
		if err := feed(record); err != nil {
			return stats, err
		}
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, raggedError(err)
		}
		if err := feed(record); err != nil {
			return stats, err
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	log.Infof("imported %s: %d rows in %d chunks (%v)", table, stats.Rows, stats.Chunks,
		stats.Duration.Round(time.Millisecond))
	return stats, nil
}

func raggedError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("csv line %d: %w", parseErr.Line, err)
	}
	return fmt.Errorf("read csv: %w", err)
}

var nonIdent = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// tableName derives a table name from the CSV filename.
func tableName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := strings.Trim(nonIdent.ReplaceAllString(base, "_"), "_")
	if name == "" {
		return "imported"
	}
	return strings.ToLower(name)
}

// sanitizeColumns turns header cells into usable identifiers, rejecting
// duplicates after sanitization.
func sanitizeColumns(header []string) ([]string, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("csv header is empty")
	}
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, cell := range header {
		name := strings.Trim(nonIdent.ReplaceAllString(strings.TrimSpace(cell), "_"), "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		name = strings.ToLower(name)
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q after sanitization", name)
		}
		seen[name] = true
		out[i] = name
	}
	return out, nil
}

// sniffTypes infers a SQLite type per column from sample rows. Integers
// (and booleans) map to INTEGER, fractional numbers to REAL, everything
// else to TEXT; empty cells are ignored.
func sniffTypes(columns int, samples [][]string) []string {
	types := make([]string, columns)
	for col := 0; col < columns; col++ {
		sawInt, sawFloat, sawOther, sawValue := false, false, false, false
		for _, row := range samples {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			sawValue = true
			switch inspect.ClassifyString(row[col]) {
			case inspect.TypeInt, inspect.TypeBool:
				sawInt = true
			case inspect.TypeFloat:
				sawFloat = true
			default:
				sawOther = true
			}
		}
		switch {
		case !sawValue || sawOther:
			types[col] = "TEXT"
		case sawFloat:
			types[col] = "REAL"
		case sawInt:
			types[col] = "INTEGER"
		default:
			types[col] = "TEXT"
		}
	}
	return types
}

func createTable(ctx context.Context, db *sql.DB, table string, columns, types []string) error {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%q %s", col, types[i])
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func insertStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = fmt.Sprintf("%q", col)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// bindValue converts a cell to its column's declared type so INTEGER and
// REAL columns hold native values, not text. Booleans land as 0/1. Cells
// the column type cannot absorb fall back to the raw text.
func bindValue(cell, sqlType string) any {
	if cell == "" {
		return nil
	}
	trimmed := strings.TrimSpace(cell)
	switch sqlType {
	case "INTEGER":
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		switch strings.ToLower(trimmed) {
		case "true":
			return int64(1)
		case "false":
			return int64(0)
		}
	case "REAL":
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return cell
}

// insertChunk appends one chunk inside a transaction. Empty cells become
// NULL and non-empty cells are bound per their column's declared type.
func insertChunk(ctx context.Context, db *sql.DB, insertSQL string, chunk [][]string, types []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, 0, 16)
	for _, record := range chunk {
		args = args[:0]
		for i, cell := range record {
			args = append(args, bindValue(cell, types[i]))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return tx.Commit()
}
