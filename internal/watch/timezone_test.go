package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"timeguard/internal/signals"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

// swapLink replaces link atomically, the way timedatectl does.
func swapLink(t *testing.T, target, link string) {
	t.Helper()
	tmp := link + ".tmp"
	_ = os.Remove(tmp)
	require.NoError(t, os.Symlink(target, tmp))
	require.NoError(t, os.Rename(tmp, link))
}

func TestZoneFromLink(t *testing.T) {
	cases := map[string]string{
		"/usr/share/zoneinfo/Europe/Berlin":       "Europe/Berlin",
		"../usr/share/zoneinfo/America/New_York":  "America/New_York",
		"/usr/share/zoneinfo/posix/Asia/Tashkent": "posix/Asia/Tashkent",
		"/opt/zones/custom":                       "/opt/zones/custom",
	}
	for in, want := range cases {
		if got := zoneFromLink(in); got != want {
			t.Errorf("zoneFromLink(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTimezoneWatcher_Resolve(t *testing.T) {
	dir := t.TempDir()
	localtime := filepath.Join(dir, "localtime")
	tzfile := filepath.Join(dir, "timezone")
	w := NewTimezoneWatcher(newChanPublisher(), nil, localtime, tzfile)

	require.Equal(t, "", w.Resolve())

	require.NoError(t, os.WriteFile(localtime, []byte("TZif2 fake"), 0o644))
	require.Regexp(t, `^crc32:[0-9a-f]{8}$`, w.Resolve())

	require.NoError(t, os.WriteFile(tzfile, []byte("Asia/Tashkent\n"), 0o644))
	require.Regexp(t, `^Asia/Tashkent \(crc32:[0-9a-f]{8}\)$`, w.Resolve())

	require.NoError(t, os.Remove(localtime))
	require.Equal(t, "Asia/Tashkent", w.Resolve())

	swapLink(t, "/usr/share/zoneinfo/Europe/Berlin", localtime)
	require.Equal(t, "Europe/Berlin", w.Resolve())
}

func TestTimezoneWatcher_Relevant(t *testing.T) {
	w := NewTimezoneWatcher(nil, nil, "/etc/localtime", "/etc/timezone")

	require.True(t, w.relevant(fsnotify.Event{Name: "/etc/localtime", Op: fsnotify.Create}))
	require.True(t, w.relevant(fsnotify.Event{Name: "/etc/timezone", Op: fsnotify.Write}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/etc/localtime", Op: fsnotify.Chmod}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/etc/hosts", Op: fsnotify.Write}))
}

func TestTimezoneWatcher_CheckPublishesOnlyChanges(t *testing.T) {
	dir := t.TempDir()
	tzfile := filepath.Join(dir, "timezone")
	pub := newChanPublisher()
	w := NewTimezoneWatcher(pub, nil, filepath.Join(dir, "localtime"), tzfile)

	require.NoError(t, os.WriteFile(tzfile, []byte("UTC\n"), 0o644))
	w.last = w.Resolve()

	w.check()
	pub.none(t, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(tzfile, []byte("Asia/Tokyo\n"), 0o644))
	w.check()
	ev := pub.next(t)
	require.Equal(t, signals.KindTimezone, ev.Kind)
	require.Equal(t, "Asia/Tokyo", w.last)

	// a missing file mid-replace is not a change
	require.NoError(t, os.Remove(tzfile))
	w.check()
	pub.none(t, 10*time.Millisecond)
	require.Equal(t, "Asia/Tokyo", w.last)
}

func TestTimezoneWatcher_CheckSeesReplacedZoneFile(t *testing.T) {
	dir := t.TempDir()
	localtime := filepath.Join(dir, "localtime")
	tzfile := filepath.Join(dir, "timezone")
	pub := newChanPublisher()
	w := NewTimezoneWatcher(pub, nil, localtime, tzfile)

	require.NoError(t, os.WriteFile(tzfile, []byte("Europe/Berlin\n"), 0o644))
	require.NoError(t, os.WriteFile(localtime, []byte("TZif2 berlin"), 0o644))
	w.last = w.Resolve()

	// copy a new zone over localtime; the name file is not touched
	next := filepath.Join(dir, "localtime.new")
	require.NoError(t, os.WriteFile(next, []byte("TZif2 tokyo"), 0o644))
	require.NoError(t, os.Rename(next, localtime))

	w.check()
	ev := pub.next(t)
	require.Equal(t, signals.KindTimezone, ev.Kind)
	require.Contains(t, w.last, "Europe/Berlin")

	w.check()
	pub.none(t, 10*time.Millisecond)
}

func TestTimezoneWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	localtime := filepath.Join(dir, "localtime")
	swapLink(t, "/usr/share/zoneinfo/Europe/Berlin", localtime)

	pub := newChanPublisher()
	w := NewTimezoneWatcher(pub, nil, localtime, filepath.Join(dir, "timezone"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Toggle until the watcher is up; once it is, every swap is a change.
	targets := []string{"/usr/share/zoneinfo/Asia/Tokyo", "/usr/share/zoneinfo/Europe/Berlin"}
	for i := 0; i < 50; i++ {
		swapLink(t, targets[i%2], localtime)
		select {
		case ev := <-pub.ch:
			require.Equal(t, signals.KindTimezone, ev.Kind)
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	t.Fatal("no timezone event observed")
}

func TestTimezoneWatcher_RunFailsWithoutDirectories(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "localtime")
	w := NewTimezoneWatcher(newChanPublisher(), nil, missing, missing)
	require.Error(t, w.Run(context.Background()))
}
