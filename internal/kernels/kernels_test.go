package kernels

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"6.8.0-45-generic", "6.8.0-45-generic", 0},
		{"6.8.0-45-generic", "6.8.0-9-generic", 1},
		{"6.8.0-9-generic", "6.8.0-45-generic", -1},
		{"6.8.0-45", "5.15.0-130", 1},
		{"6.8.0", "6.8.0-45", -1},
		{"6.12.1", "6.9.9", 1},
		{"6.8.0-45-generic", "6.8.0-45-lowlatency", -1},
	}
	for _, tc := range cases {
		if got := CompareVersions(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestInstalledSortsNewestFirst(t *testing.T) {
	boot := t.TempDir()
	for _, v := range []string{"5.15.0-130-generic", "6.8.0-45-generic", "6.8.0-9-generic"} {
		if err := os.WriteFile(filepath.Join(boot, "vmlinuz-"+v), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-kernel boot files are ignored.
	if err := os.WriteFile(filepath.Join(boot, "grubenv"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	kernels, err := Installed(boot)
	if err != nil {
		t.Fatalf("Installed: %v", err)
	}
	got := make([]string, len(kernels))
	for i, k := range kernels {
		got[i] = k.Version
	}
	want := []string{"6.8.0-45-generic", "6.8.0-9-generic", "5.15.0-130-generic"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestInstalledEmptyBootDir(t *testing.T) {
	if _, err := Installed(t.TempDir()); err == nil {
		t.Error("expected error for empty boot dir")
	}
}

func kernelSet(versions ...string) []Kernel {
	out := make([]Kernel, len(versions))
	for i, v := range versions {
		out[i] = Kernel{Version: v, Image: "/boot/vmlinuz-" + v}
	}
	return out
}

func aptManager() *PackageManager {
	return &managers[0]
}

func TestBuildPlanKeepsNewestAndRunning(t *testing.T) {
	installed := kernelSet(
		"6.8.0-45-generic",
		"6.8.0-40-generic",
		"6.8.0-31-generic",
		"5.15.0-130-generic",
	)
	// Running an older kernel than the newest installed.
	plan, err := BuildPlan(installed, "6.8.0-31-generic", 2, aptManager())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	if len(plan.Keep) != 3 {
		t.Fatalf("keep = %v, want 3 entries", plan.Keep)
	}
	if len(plan.Remove) != 1 || plan.Remove[0].Version != "5.15.0-130-generic" {
		t.Fatalf("remove = %v, want just 5.15.0-130-generic", plan.Remove)
	}
	if plan.Packages[0] != "linux-image-5.15.0-130-generic" {
		t.Errorf("package = %q", plan.Packages[0])
	}
}

func TestBuildPlanNeverRemovesRunning(t *testing.T) {
	installed := kernelSet("6.8.0-45-generic", "6.8.0-40-generic", "5.15.0-130-generic")
	plan, err := BuildPlan(installed, "5.15.0-130-generic", 1, aptManager())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range plan.Remove {
		if k.Version == "5.15.0-130-generic" {
			t.Fatal("plan removes the running kernel")
		}
	}
	// Newest kept, running kept, middle one removed.
	if len(plan.Remove) != 1 || plan.Remove[0].Version != "6.8.0-40-generic" {
		t.Errorf("remove = %v, want 6.8.0-40-generic", plan.Remove)
	}
}

func TestBuildPlanNothingToRemove(t *testing.T) {
	installed := kernelSet("6.8.0-45-generic", "6.8.0-40-generic")
	plan, err := BuildPlan(installed, "6.8.0-45-generic", 2, aptManager())
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Remove) != 0 {
		t.Errorf("remove = %v, want none", plan.Remove)
	}
}

func TestBuildPlanRejectsBadKeep(t *testing.T) {
	if _, err := BuildPlan(kernelSet("6.8.0-45"), "6.8.0-45", 0, aptManager()); err == nil {
		t.Error("expected error for keep=0")
	}
}

func TestPlanDescribe(t *testing.T) {
	installed := kernelSet("6.8.0-45-generic", "5.15.0-130-generic")
	plan, err := BuildPlan(installed, "6.8.0-45-generic", 1, aptManager())
	if err != nil {
		t.Fatal(err)
	}
	out := plan.Describe()
	for _, want := range []string{"running: 6.8.0-45-generic", "keep:    6.8.0-45-generic", "remove:  5.15.0-130-generic"} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q:\n%s", want, out)
		}
	}
}
