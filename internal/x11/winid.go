// Package x11 looks up X11 window IDs by shelling out to xdotool.
package x11

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"syskit/internal/logging"
	"syskit/internal/sysexec"
)

// ErrNoDisplay reports that no X display is available.
var ErrNoDisplay = errors.New("DISPLAY is not set")

// ErrNoMatch reports that no window satisfied the query.
var ErrNoMatch = errors.New("no matching window")

// Query selects windows. Exactly one of Title or Class should be set;
// Title is a regular expression, per xdotool search semantics.
type Query struct {
	Title string
	Class string
}

// Lookup returns the IDs of all matching windows, in xdotool order.
func Lookup(ctx context.Context, runner *sysexec.Runner, q Query) ([]uint64, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, ErrNoDisplay
	}
	if (q.Title == "") == (q.Class == "") {
		return nil, fmt.Errorf("exactly one of title or class must be given")
	}

	args := []string{"search"}
	if q.Title != "" {
		args = append(args, "--name", q.Title)
	} else {
		args = append(args, "--class", q.Class)
	}

	res, err := runner.Run(ctx, sysexec.Command{Binary: "xdotool", Args: args})
	if err != nil {
		// xdotool exits 1 with no output when nothing matched.
		if res != nil && res.ExitCode == 1 && strings.TrimSpace(res.Stdout) == "" {
			return nil, ErrNoMatch
		}
		return nil, err
	}

	var ids []uint64
	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected xdotool output %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoMatch
	}
	logging.Get(logging.CategoryDevices).Debugf("window lookup matched %d windows", len(ids))
	return ids, nil
}

// Format renders a window ID the way X tools print them (hex) or decimal.
func Format(id uint64, hex bool) string {
	if hex {
		return fmt.Sprintf("0x%08x", id)
	}
	return strconv.FormatUint(id, 10)
}
