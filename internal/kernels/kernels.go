// Package kernels removes old kernel packages. Installed kernels are
// enumerated from /boot, the running kernel and the newest few are kept,
// and the rest are purged through the system package manager.
package kernels

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"syskit/internal/logging"
	"syskit/internal/sysexec"
)

// Kernel is one installed kernel version.
type Kernel struct {
	Version string // e.g. 6.8.0-45-generic
	Image   string // path to the vmlinuz file
}

// Plan is the outcome of retention policy applied to the installed set.
type Plan struct {
	Running  string
	Keep     []Kernel
	Remove   []Kernel
	Packages []string // package names the removals map to
}

// PackageManager knows how to purge kernel packages on one distro family.
type PackageManager struct {
	Name    string
	Binary  string
	Args    []string // purge arguments, package names appended
	Pattern string   // package name template, %s is the kernel version
}

var managers = []PackageManager{
	{Name: "apt", Binary: "apt-get", Args: []string{"-y", "purge"}, Pattern: "linux-image-%s"},
	{Name: "dnf", Binary: "dnf", Args: []string{"-y", "remove"}, Pattern: "kernel-core-%s"},
}

// DetectManager returns the first known package manager present on PATH.
func DetectManager() (*PackageManager, error) {
	for i := range managers {
		if sysexec.Available(managers[i].Binary) {
			return &managers[i], nil
		}
	}
	return nil, fmt.Errorf("no supported package manager found (tried apt-get, dnf)")
}

// Installed lists kernels from vmlinuz images under bootDir.
func Installed(bootDir string) ([]Kernel, error) {
	matches, err := filepath.Glob(filepath.Join(bootDir, "vmlinuz-*"))
	if err != nil {
		return nil, err
	}
	var kernels []Kernel
	for _, path := range matches {
		version := strings.TrimPrefix(filepath.Base(path), "vmlinuz-")
		if version == "" {
			continue
		}
		kernels = append(kernels, Kernel{Version: version, Image: path})
	}
	if len(kernels) == 0 {
		return nil, fmt.Errorf("no kernel images found under %s", bootDir)
	}
	sort.Slice(kernels, func(i, j int) bool {
		return CompareVersions(kernels[i].Version, kernels[j].Version) > 0
	})
	return kernels, nil
}

// Running returns the booted kernel release (uname -r).
func Running() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("uname: %w", err)
	}
	return unix.ByteSliceToString(uts.Release[:]), nil
}

var versionSegment = regexp.MustCompile(`\d+|[a-z]+`)

// CompareVersions orders kernel release strings. Numeric segments compare
// numerically, alphabetic suffixes lexically, so 6.8.0-45 > 6.8.0-9.
func CompareVersions(a, b string) int {
	as := versionSegment.FindAllString(a, -1)
	bs := versionSegment.FindAllString(b, -1)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		case aerr == nil:
			return 1 // numbers sort after names (6.8.0-45 > 6.8.0-rc)
		case berr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// BuildPlan applies the retention policy: the running kernel is never
// removed, and the newest keep versions are retained on top of it.
func BuildPlan(installed []Kernel, running string, keep int, mgr *PackageManager) (*Plan, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be >= 1, got %d", keep)
	}

	sorted := make([]Kernel, len(installed))
	copy(sorted, installed)
	sort.Slice(sorted, func(i, j int) bool {
		return CompareVersions(sorted[i].Version, sorted[j].Version) > 0
	})

	plan := &Plan{Running: running}
	kept := 0
	for _, k := range sorted {
		if k.Version == running || kept < keep {
			plan.Keep = append(plan.Keep, k)
			if k.Version != running {
				kept++
			}
			continue
		}
		plan.Remove = append(plan.Remove, k)
		plan.Packages = append(plan.Packages, fmt.Sprintf(mgr.Pattern, k.Version))
	}
	return plan, nil
}

// Cleaner executes removal plans.
type Cleaner struct {
	Runner  *sysexec.Runner
	BootDir string // defaults to /boot
	Keep    int
}

// Clean builds and executes the plan. With a dry-run runner the plan is
// only logged. Returns the plan either way.
func (c *Cleaner) Clean(ctx context.Context) (*Plan, error) {
	log := logging.Get(logging.CategoryKernels)

	bootDir := c.BootDir
	if bootDir == "" {
		bootDir = "/boot"
	}
	installed, err := Installed(bootDir)
	if err != nil {
		return nil, err
	}
	running, err := Running()
	if err != nil {
		return nil, err
	}
	mgr, err := DetectManager()
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(installed, running, c.Keep, mgr)
	if err != nil {
		return nil, err
	}
	log.Infof("running kernel %s; keeping %d of %d installed", running, len(plan.Keep), len(installed))

	if len(plan.Remove) == 0 {
		log.Infof("nothing to remove")
		return plan, nil
	}
	for _, k := range plan.Remove {
		log.Infof("removing kernel %s", k.Version)
	}

	args := append(append([]string{}, mgr.Args...), plan.Packages...)
	if _, err := c.Runner.Run(ctx, sysexec.Command{
		Binary:  mgr.Binary,
		Args:    args,
		Timeout: 10 * time.Minute, // package removal can be slow
	}); err != nil {
		return plan, fmt.Errorf("purge via %s: %w", mgr.Name, err)
	}
	log.Infof("purged %d kernel packages via %s", len(plan.Packages), mgr.Name)
	return plan, nil
}

// Describe renders the plan for dry-run output.
func (p *Plan) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "running: %s\n", p.Running)
	for _, k := range p.Keep {
		fmt.Fprintf(&b, "keep:    %s\n", k.Version)
	}
	for i, k := range p.Remove {
		fmt.Fprintf(&b, "remove:  %s (%s)\n", k.Version, p.Packages[i])
	}
	if len(p.Remove) == 0 {
		b.WriteString("remove:  nothing\n")
	}
	return b.String()
}
