package mirror

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSyncCopiesTree(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "vmlinuz"), "kernel image")
	writeFile(t, filepath.Join(src, "grub", "grub.cfg"), "menuentry")

	s := &Syncer{Source: src, Dest: dest}
	stats, err := s.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Copied != 2 {
		t.Errorf("copied = %d, want 2", stats.Copied)
	}
	if got := readFile(t, filepath.Join(dest, "grub", "grub.cfg")); got != "menuentry" {
		t.Errorf("grub.cfg = %q", got)
	}
}

func TestSyncDeletesExtraneous(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "keep.txt"), "keep")
	writeFile(t, filepath.Join(dest, "keep.txt"), "keep")
	writeFile(t, filepath.Join(dest, "stale.txt"), "stale")
	writeFile(t, filepath.Join(dest, "old", "nested.bin"), "gone")

	s := &Syncer{Source: src, Dest: dest}
	stats, err := s.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Deleted != 2 {
		t.Errorf("deleted = %d, want 2 (file + dir)", stats.Deleted)
	}
	if _, err := os.Stat(filepath.Join(dest, "stale.txt")); !os.IsNotExist(err) {
		t.Error("stale.txt should be gone")
	}
	if _, err := os.Stat(filepath.Join(dest, "old")); !os.IsNotExist(err) {
		t.Error("old/ should be gone")
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "same")

	s := &Syncer{Source: src, Dest: dest}
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	stats, err := s.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Copied != 0 {
		t.Errorf("second pass copied = %d, want 0", stats.Copied)
	}
	if stats.Skipped != 1 {
		t.Errorf("second pass skipped = %d, want 1", stats.Skipped)
	}
}

func TestSyncOverwritesChanged(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "cfg"), "v1")

	s := &Syncer{Source: src, Dest: dest}
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(src, "cfg"), "v2 with more bytes")
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(dest, "cfg")); got != "v2 with more bytes" {
		t.Errorf("cfg = %q, want updated content", got)
	}
}

func TestSyncHonorsExcludes(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "real.txt"), "yes")
	writeFile(t, filepath.Join(src, "editor.swp"), "no")
	writeFile(t, filepath.Join(src, "scratch", "junk"), "no")

	s := &Syncer{Source: src, Dest: dest, Exclude: []string{"*.swp", "scratch"}}
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dest, "editor.swp")); !os.IsNotExist(err) {
		t.Error("excluded file was copied")
	}
	if _, err := os.Stat(filepath.Join(dest, "scratch")); !os.IsNotExist(err) {
		t.Error("excluded directory was copied")
	}
	if _, err := os.Stat(filepath.Join(dest, "real.txt")); err != nil {
		t.Error("real.txt missing from mirror")
	}
}

func TestSyncMissingSource(t *testing.T) {
	s := &Syncer{Source: filepath.Join(t.TempDir(), "missing"), Dest: t.TempDir()}
	if _, err := s.Sync(); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSyncPreservesMode(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "script.sh")
	writeFile(t, path, "#!/bin/sh\n")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatal(err)
	}

	s := &Syncer{Source: src, Dest: dest}
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dest, "script.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}
