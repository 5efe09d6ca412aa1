// Package devnode creates character device nodes for drivers that register
// a major number in /proc/devices but do not populate /dev themselves
// (historically the NVIDIA GPU driver on headless boxes).
package devnode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"syskit/internal/logging"
)

// ControlMinor is the conventional minor number of the driver control node
// (e.g. /dev/nvidiactl).
const ControlMinor = 255

// ErrDriverNotLoaded reports that the driver has no entry in /proc/devices.
var ErrDriverNotLoaded = errors.New("driver not registered in /proc/devices")

// Plan describes the nodes to create for one driver.
type Plan struct {
	Driver string // name as registered in /proc/devices
	Count  int    // per-device nodes, minors 0..Count-1
	DevDir string // defaults to /dev
}

// Result reports what one Apply run did.
type Result struct {
	Major   uint32
	Created []string
	Skipped []string // nodes that already existed
}

// CharMajor parses /proc/devices-format content and returns the character
// device major number registered under the given driver name.
func CharMajor(r io.Reader, driver string) (uint32, error) {
	scanner := bufio.NewScanner(r)
	inChar := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "Character devices:":
			inChar = true
			continue
		case line == "Block devices:":
			inChar = false
			continue
		case line == "" || !inChar:
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 || fields[1] != driver {
			continue
		}
		major, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad major %q for %s: %w", fields[0], driver, err)
		}
		return uint32(major), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: %s", ErrDriverNotLoaded, driver)
}

// Apply creates the device nodes described by the plan. Nodes that already
// exist are skipped, not treated as errors. Requires root.
func Apply(plan Plan) (*Result, error) {
	if plan.Count < 1 {
		return nil, fmt.Errorf("node count must be >= 1, got %d", plan.Count)
	}
	if plan.DevDir == "" {
		plan.DevDir = "/dev"
	}

	f, err := os.Open("/proc/devices")
	if err != nil {
		return nil, fmt.Errorf("open /proc/devices: %w", err)
	}
	defer f.Close()

	major, err := CharMajor(f, plan.Driver)
	if err != nil {
		return nil, err
	}
	return applyWithMajor(plan, major)
}

func applyWithMajor(plan Plan, major uint32) (*Result, error) {
	log := logging.Get(logging.CategoryDevices)
	res := &Result{Major: major}

	type node struct {
		path  string
		minor uint32
	}
	nodes := make([]node, 0, plan.Count+1)
	for i := 0; i < plan.Count; i++ {
		nodes = append(nodes, node{
			path:  fmt.Sprintf("%s/%s%d", plan.DevDir, plan.Driver, i),
			minor: uint32(i),
		})
	}
	nodes = append(nodes, node{
		path:  fmt.Sprintf("%s/%sctl", plan.DevDir, plan.Driver),
		minor: ControlMinor,
	})

	for _, n := range nodes {
		if _, err := os.Stat(n.path); err == nil {
			log.Debugf("%s already exists, skipping", n.path)
			res.Skipped = append(res.Skipped, n.path)
			continue
		} else if !os.IsNotExist(err) {
			return res, fmt.Errorf("stat %s: %w", n.path, err)
		}

		dev := unix.Mkdev(major, n.minor)
		if err := unix.Mknod(n.path, unix.S_IFCHR|0o666, int(dev)); err != nil {
			if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
				return res, fmt.Errorf("mknod %s: %w (root required)", n.path, err)
			}
			return res, fmt.Errorf("mknod %s: %w", n.path, err)
		}
		log.Infof("created %s (char %d:%d)", n.path, major, n.minor)
		res.Created = append(res.Created, n.path)
	}
	return res, nil
}
