package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"syskit/internal/config"
)

func TestResolvePairsFromFlags(t *testing.T) {
	cfg = config.DefaultConfig()
	mirrorPairs = []string{"/a:/b", "/c:/d"}
	defer func() { mirrorPairs = nil }()

	pairs, err := resolvePairs()
	if err != nil {
		t.Fatalf("resolvePairs failed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Source != "/a" || pairs[0].Dest != "/b" {
		t.Errorf("unexpected first pair: %+v", pairs[0])
	}
}

func TestResolvePairsFromConfig(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Mirror.Pairs = []config.SyncPair{{Source: "/boot", Dest: "/backup/boot"}}
	mirrorPairs = nil

	pairs, err := resolvePairs()
	if err != nil {
		t.Fatalf("resolvePairs failed: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Source != "/boot" {
		t.Errorf("config pairs not used: %+v", pairs)
	}
}

func TestResolvePairsErrors(t *testing.T) {
	cfg = config.DefaultConfig()

	mirrorPairs = nil
	if _, err := resolvePairs(); err == nil {
		t.Error("expected error with no pairs anywhere")
	}

	mirrorPairs = []string{"no-colon"}
	defer func() { mirrorPairs = nil }()
	if _, err := resolvePairs(); err == nil {
		t.Error("expected error for malformed pair")
	}
}

func TestContinentCmd(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	if err := runContinent(cmd, []string{"de", "JP", "br"}); err != nil {
		t.Errorf("valid codes failed: %v", err)
	}
	if err := runContinent(cmd, []string{"de", "zz"}); err == nil {
		t.Error("expected nonzero result for unknown code")
	}
	if err := runContinent(cmd, nil); err == nil {
		t.Error("expected error with no arguments")
	}
}

func TestPosixdayCmd(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	if err := runPosixday(cmd, []string{"19800", "1976-09-26"}); err != nil {
		t.Errorf("conversion failed: %v", err)
	}
	if err := runPosixday(cmd, []string{"not-a-date"}); err == nil {
		t.Error("expected error for unparseable argument")
	}
}

func TestPosixdayRewriteCmd(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	dir := t.TempDir()
	path := filepath.Join(dir, "sched.txt")
	if err := os.WriteFile(path, []byte("start 19800 end 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	posixdayInPlace = false
	posixdayMin, posixdayMax = 0, 0 // fall back to config range
	if err := runPosixdayRewrite(cmd, []string{path}); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "sched_converted.txt"))
	if err != nil {
		t.Fatalf("converted file missing: %v", err)
	}
	if !strings.Contains(string(out), `"2024-03-18"`) {
		t.Errorf("day literal not rewritten: %q", out)
	}
	if !strings.Contains(string(out), " 12\n") {
		t.Errorf("out-of-range literal was touched: %q", out)
	}
}

func TestYamlfixCmd(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	dir := t.TempDir()
	path := filepath.Join(dir, "t.yaml")
	if err := os.WriteFile(path, []byte("Value: !Ref Thing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(dir, "out.yaml")
	yamlfixOut = outPath
	yamlfixLongForm = true
	defer func() { yamlfixOut = ""; yamlfixLongForm = false }()

	if err := runYamlfix(cmd, []string{path}); err != nil {
		t.Fatalf("yamlfix failed: %v", err)
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "Ref: Thing") {
		t.Errorf("short tag not expanded: %q", out)
	}

	yamlfixInPlace = true
	if err := runYamlfix(cmd, []string{path}); err == nil {
		t.Error("expected --in-place/--out conflict error")
	}
	yamlfixInPlace = false
}

func TestCSV2DBCmd(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	csv := "name,age\nalice,30\nbob,41\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	csv2dbDB = filepath.Join(dir, "people.db")
	defer func() { csv2dbDB = "" }()

	if err := runCSV2DB(cmd, []string{path}); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if _, err := os.Stat(csv2dbDB); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestInspectCmdConfigReport(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	if err := runInspect(cmd, nil); err != nil {
		t.Errorf("config report failed: %v", err)
	}
}

func TestInspectCmdFind(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	dir := t.TempDir()
	path := filepath.Join(dir, "d.yaml")
	if err := os.WriteFile(path, []byte("a:\n  b: [1, 42]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	inspectFind = "42"
	defer func() { inspectFind = "" }()
	if err := runInspect(cmd, []string{path}); err != nil {
		t.Errorf("find failed: %v", err)
	}

	inspectFind = "missing"
	if err := runInspect(cmd, []string{path}); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestJsonfixCmd(t *testing.T) {
	cfg = config.DefaultConfig()
	cmd := &cobra.Command{}

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte(`{name: "box", "ports": [80, 443,]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(dir, "fixed.json")
	jsonfixOut = outPath
	defer func() { jsonfixOut = "" }()

	if err := runJsonfix(cmd, []string{path}); err != nil {
		t.Fatalf("jsonfix failed: %v", err)
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"name": "box"`) {
		t.Errorf("bare key not repaired: %q", out)
	}

	if err := os.WriteFile(path, []byte(`{"a": @}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runJsonfix(cmd, []string{path}); err == nil {
		t.Error("expected error for unrecoverable input")
	}
}
