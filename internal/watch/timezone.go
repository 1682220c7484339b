package watch

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"

	"timeguard/internal/logger"
	"timeguard/internal/signals"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultLocaltimePath = "/etc/localtime"
	DefaultTimezonePath  = "/etc/timezone"
)

// TimezoneWatcher reports host timezone changes by watching the files the
// system reads its zone from.
type TimezoneWatcher struct {
	pub           signals.Publisher
	log           *logger.Logger
	localtimePath string
	timezonePath  string
	last          string
}

func NewTimezoneWatcher(pub signals.Publisher, log *logger.Logger, localtimePath, timezonePath string) *TimezoneWatcher {
	if localtimePath == "" {
		localtimePath = DefaultLocaltimePath
	}
	if timezonePath == "" {
		timezonePath = DefaultTimezonePath
	}
	return &TimezoneWatcher{
		pub:           pub,
		log:           nopIfNil(log).Named("timezone"),
		localtimePath: localtimePath,
		timezonePath:  timezonePath,
	}
}

// Run watches the parent directories, since zone files are normally replaced
// by rename or by swapping a symlink rather than written in place.
func (w *TimezoneWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	added := 0
	seen := map[string]bool{}
	for _, p := range []string{w.localtimePath, w.timezonePath} {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := watcher.Add(dir); err != nil {
			w.log.Warnw("cannot watch directory", "dir", dir, "err", err)
			continue
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("no timezone directory could be watched")
	}

	w.last = w.Resolve()
	w.log.Infow("timezone watcher started", "zone", w.last)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.check()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("fsnotify error", "err", err)
		}
	}
}

func (w *TimezoneWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == filepath.Clean(w.localtimePath) || name == filepath.Clean(w.timezonePath)
}

func (w *TimezoneWatcher) check() {
	zone := w.Resolve()
	if zone == "" || zone == w.last {
		return
	}
	w.log.Infow("timezone changed", "from", w.last, "to", zone)
	w.last = zone
	w.pub.Publish(signals.Event{Kind: signals.KindTimezone, Source: "timezone"})
}

// Resolve returns an identifier for the configured zone. A symlinked
// localtime resolves to its zoneinfo name. A regular localtime file resolves
// to the timezone name (if any) plus a checksum of the file, so replacing the
// file contents is a change even when the name file is left alone. It
// returns "" while both files are missing, e.g. in the middle of a replace.
func (w *TimezoneWatcher) Resolve() string {
	if target, err := os.Readlink(w.localtimePath); err == nil {
		return zoneFromLink(target)
	}
	var name string
	if b, err := os.ReadFile(w.timezonePath); err == nil {
		name = strings.TrimSpace(string(b))
	}
	b, err := os.ReadFile(w.localtimePath)
	if err != nil {
		return name
	}
	sum := fmt.Sprintf("crc32:%08x", crc32.ChecksumIEEE(b))
	if name == "" {
		return sum
	}
	return name + " (" + sum + ")"
}

func zoneFromLink(target string) string {
	const marker = "zoneinfo/"
	if i := strings.LastIndex(target, marker); i >= 0 {
		return target[i+len(marker):]
	}
	return target
}
