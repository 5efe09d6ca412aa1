// Package posixday converts POSIX day counts (days since the Unix epoch)
// to ISO dates, including bulk rewriting of day literals inside files.
package posixday

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"syskit/internal/logging"
)

const secondsPerDay = 86400

// ToISO converts a day count since 1970-01-01 to an ISO yyyy-mm-dd string.
func ToISO(day int) string {
	return time.Unix(int64(day)*secondsPerDay, 0).UTC().Format("2006-01-02")
}

// FromISO converts an ISO yyyy-mm-dd string to its POSIX day count.
func FromISO(date string) (int, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	return int(t.Unix() / secondsPerDay), nil
}

var dayLiteral = regexp.MustCompile(`\b\d{1,7}\b`)

// Rewriter replaces standalone integers within [Min, Max] by their quoted
// ISO date. The range keeps ordinary small numbers and years untouched;
// the defaults cover 1976 through 2024.
type Rewriter struct {
	Min int
	Max int
}

// Rewrite returns content with every in-range day literal replaced by a
// double-quoted ISO date string, plus the number of replacements.
func (r *Rewriter) Rewrite(content string) (string, int) {
	count := 0
	out := dayLiteral.ReplaceAllStringFunc(content, func(match string) string {
		n, err := strconv.Atoi(match)
		if err != nil || n < r.Min || n > r.Max {
			return match
		}
		count++
		return `"` + ToISO(n) + `"`
	})
	return out, count
}

// RewriteFile rewrites day literals in the file at path. Unless inPlace is
// set, the result is written next to the original with a _converted suffix;
// the output path is returned either way.
func (r *Rewriter) RewriteFile(path string, inPlace bool) (string, error) {
	log := logging.Get(logging.CategoryConvert)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	converted, count := r.Rewrite(string(data))
	outPath := path
	if !inPlace {
		outPath = convertedPath(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, []byte(converted), info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("write %s: %w", outPath, err)
	}
	log.Infof("rewrote %d day literals from %s into %s", count, path, outPath)
	return outPath, nil
}

// convertedPath inserts _converted before the extension:
// schedule.py -> schedule_converted.py.
func convertedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_converted" + ext
}
