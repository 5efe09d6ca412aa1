// Package mirror implements watch-and-backup: a source tree is mirrored
// into a destination tree, and an fsnotify watcher re-runs the mirror
// whenever something under the source changes.
package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"syskit/internal/logging"
)

// Syncer mirrors Source into Dest. Files missing or stale in Dest are
// copied; entries in Dest with no counterpart in Source are deleted.
// There is no retention policy beyond delete-and-mirror.
type Syncer struct {
	Source  string
	Dest    string
	Exclude []string // glob patterns matched against base names
}

// SyncStats summarizes one mirror run.
type SyncStats struct {
	RunID    string
	Copied   int
	Deleted  int
	Skipped  int
	Bytes    int64
	Duration time.Duration
}

// Sync performs one full mirror pass and returns its stats.
func (s *Syncer) Sync() (*SyncStats, error) {
	log := logging.Get(logging.CategoryMirror)
	stats := &SyncStats{RunID: uuid.NewString()[:8]}
	start := time.Now()

	srcInfo, err := os.Stat(s.Source)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.Source, err)
	}
	if !srcInfo.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", s.Source)
	}
	if err := os.MkdirAll(s.Dest, srcInfo.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("create dest %s: %w", s.Dest, err)
	}

	// Pass 1: copy new and changed entries, remembering everything seen.
	seen := make(map[string]bool)
	err = filepath.WalkDir(s.Source, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Source, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if s.excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		seen[rel] = true

		target := filepath.Join(s.Dest, rel)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			// Sockets, fifos and symlinks are not boot-partition material.
			stats.Skipped++
			return nil
		}
		if upToDate(info, target) {
			stats.Skipped++
			return nil
		}

		n, err := copyFile(path, target, info)
		if err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		log.Debugf("[%s] copied %s (%d bytes)", stats.RunID, rel, n)
		stats.Copied++
		stats.Bytes += n
		return nil
	})
	if err != nil {
		return stats, err
	}

	// Pass 2: delete destination entries absent from the source.
	var doomed []string
	err = filepath.WalkDir(s.Dest, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Dest, path)
		if err != nil {
			return err
		}
		if rel == "." || seen[rel] {
			return nil
		}
		doomed = append(doomed, path)
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	// Deepest first so directories empty out before removal.
	sort.Slice(doomed, func(i, j int) bool { return len(doomed[i]) > len(doomed[j]) })
	for _, path := range doomed {
		if err := os.RemoveAll(path); err != nil {
			return stats, fmt.Errorf("delete %s: %w", path, err)
		}
		log.Debugf("[%s] deleted %s", stats.RunID, path)
		stats.Deleted++
	}

	stats.Duration = time.Since(start)
	log.Infof("[%s] mirrored %s -> %s: %d copied, %d deleted, %d unchanged, %d bytes in %v",
		stats.RunID, s.Source, s.Dest, stats.Copied, stats.Deleted, stats.Skipped,
		stats.Bytes, stats.Duration.Round(time.Millisecond))
	return stats, nil
}

func (s *Syncer) excluded(name string) bool {
	for _, pat := range s.Exclude {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// upToDate reports whether the destination already matches the source file.
// Same size and a destination mtime at or after the source's counts as
// current; content hashing is not worth it for boot-sized trees.
func upToDate(src os.FileInfo, dest string) bool {
	info, err := os.Stat(dest)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() &&
		info.Size() == src.Size() &&
		!info.ModTime().Before(src.ModTime())
}

// copyFile copies src to dest via a temp file in the same directory, then
// renames it into place and restores mode and mtime.
func copyFile(src, dest string, info os.FileInfo) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".mirror-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, err
	}
	if err := os.Chtimes(dest, time.Now(), info.ModTime()); err != nil {
		return n, err
	}
	return n, nil
}
