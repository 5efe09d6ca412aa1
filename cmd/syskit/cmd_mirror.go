package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"syskit/internal/config"
	"syskit/internal/logging"
	"syskit/internal/mirror"
)

var (
	mirrorPairs []string
	mirrorOnce  bool
)

// mirrorCmd keeps backup mirrors of directory trees current.
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Watch directory trees and mirror them to backup destinations",
	Long: `Mirrors each source tree into its destination: new and changed files
are copied, files that vanished from the source are deleted from the
destination. An initial full mirror runs before watching begins, then every
change triggers another pass after a short settle delay.

Pairs come from --pair flags or from the mirror.pairs config section.
The command runs until interrupted (SIGINT/SIGTERM).

Examples:
  syskit mirror --pair /boot:/var/backups/boot --pair /boot/efi:/var/backups/efi
  syskit mirror --once`,
	RunE: runMirror,
}

func init() {
	mirrorCmd.Flags().StringArrayVar(&mirrorPairs, "pair", nil, "SRC:DST pair to mirror (repeatable)")
	mirrorCmd.Flags().BoolVar(&mirrorOnce, "once", false, "Run a single mirror pass per pair and exit")
}

func runMirror(cmd *cobra.Command, args []string) error {
	pairs, err := resolvePairs()
	if err != nil {
		return err
	}

	debounce := time.Duration(cfg.Mirror.DebounceMs) * time.Millisecond
	log := logging.Get(logging.CategoryMirror)

	if mirrorOnce {
		for _, p := range pairs {
			s := &mirror.Syncer{Source: p.Source, Dest: p.Dest, Exclude: cfg.Mirror.Exclude}
			if _, err := s.Sync(); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, stop := signalContext()
	defer stop()

	// One independent watch loop per pair; no ordering between them.
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range pairs {
		s := &mirror.Syncer{Source: p.Source, Dest: p.Dest, Exclude: cfg.Mirror.Exclude}
		w, err := mirror.NewWatcher(s, debounce)
		if err != nil {
			stop()
			return fmt.Errorf("watcher for %s: %w", p.Source, err)
		}
		g.Go(func() error { return w.Start(ctx) })
	}

	log.Infof("mirroring %d pairs, waiting for changes", len(pairs))
	if err := g.Wait(); err != nil {
		return err
	}
	log.Infof("mirror stopped")
	return nil
}

// resolvePairs merges --pair flags with configured pairs; flags win.
func resolvePairs() ([]config.SyncPair, error) {
	if len(mirrorPairs) == 0 {
		if len(cfg.Mirror.Pairs) == 0 {
			return nil, fmt.Errorf("no mirror pairs: pass --pair SRC:DST or configure mirror.pairs")
		}
		return cfg.Mirror.Pairs, nil
	}

	out := make([]config.SyncPair, 0, len(mirrorPairs))
	for _, raw := range mirrorPairs {
		src, dst, ok := strings.Cut(raw, ":")
		if !ok || src == "" || dst == "" {
			return nil, fmt.Errorf("bad --pair %q, want SRC:DST", raw)
		}
		out = append(out, config.SyncPair{Source: src, Dest: dst})
	}
	return out, nil
}
