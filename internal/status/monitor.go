package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/whonix/sdwdate-gui/internal/rpc"
)

type source int

const (
	sourceSdwdate source = iota
	sourceTor
)

// Config locates the files the Monitor derives reports from.
type Config struct {
	SdwdateStatusPath string
	Tor               TorProbe
	// TorWatchDirs are watched for any change when Tor is installed.
	TorWatchDirs []string
	Debounce     time.Duration
}

// Monitor watches status files and fans one report per observed change out to
// its current subscribers. Changes observed while nobody is subscribed are
// dropped; a new subscriber starts from Snapshot.
type Monitor struct {
	cfg    Config
	logger *slog.Logger

	subMu   sync.Mutex
	nextSub int
	subs    map[int]chan rpc.Report

	debounceMu sync.Mutex
	debounce   map[source]*time.Timer
}

// NewMonitor creates a monitor; call Run to start watching.
func NewMonitor(cfg Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	return &Monitor{
		cfg:      cfg,
		logger:   logger,
		subs:     make(map[int]chan rpc.Report),
		debounce: make(map[source]*time.Timer),
	}
}

// subscriberBuffer bounds the reports held for a slow subscriber; further
// reports are dropped until it catches up.
const subscriberBuffer = 32

// Subscribe registers a receiver for change-driven reports. The returned
// cancel func unregisters it and is safe to call more than once.
func (m *Monitor) Subscribe() (<-chan rpc.Report, func()) {
	ch := make(chan rpc.Report, subscriberBuffer)

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// Snapshot returns the reports describing the current state, Tor first.
func (m *Monitor) Snapshot() []rpc.Report {
	reports := make([]rpc.Report, 0, 2)
	if r, ok := m.torReport(); ok {
		reports = append(reports, r)
	}
	if r, ok := m.sdwdateReport(); ok {
		reports = append(reports, r)
	}
	return reports
}

// Run watches until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	sdwdateDir := filepath.Dir(m.cfg.SdwdateStatusPath)
	if err := watcher.Add(sdwdateDir); err != nil {
		m.logger.Warn("failed to watch sdwdate status dir", "dir", sdwdateDir, "error", err.Error())
	}

	torDirs := map[string]struct{}{}
	if m.cfg.Tor.Installed {
		for _, dir := range m.cfg.TorWatchDirs {
			if err := watcher.Add(dir); err != nil {
				m.logger.Warn("failed to watch tor dir", "dir", dir, "error", err.Error())
				continue
			}
			torDirs[filepath.Clean(dir)] = struct{}{}
		}
	}

	defer m.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(ctx, event, torDirs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				m.schedule(ctx, sourceSdwdate)
				m.schedule(ctx, sourceTor)
			}
			m.logger.Warn("file watcher error", "error", err.Error())
		}
	}
}

// handleEvent maps a raw fsnotify event onto the status it affects.
func (m *Monitor) handleEvent(ctx context.Context, event fsnotify.Event, torDirs map[string]struct{}) {
	m.logger.Debug("fsnotify", "op", event.Op.String(), "name", event.Name)

	if filepath.Clean(event.Name) == filepath.Clean(m.cfg.SdwdateStatusPath) {
		if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
			m.schedule(ctx, sourceSdwdate)
		}
		return
	}

	if _, ok := torDirs[filepath.Dir(filepath.Clean(event.Name))]; ok {
		m.schedule(ctx, sourceTor)
	}
}

// schedule debounces bursts of events per status source.
func (m *Monitor) schedule(ctx context.Context, src source) {
	if src == sourceTor && !m.cfg.Tor.Installed {
		return
	}

	m.debounceMu.Lock()
	defer m.debounceMu.Unlock()

	if timer, ok := m.debounce[src]; ok {
		timer.Stop()
	}
	m.debounce[src] = time.AfterFunc(m.cfg.Debounce, func() {
		m.debounceMu.Lock()
		delete(m.debounce, src)
		m.debounceMu.Unlock()
		if ctx.Err() == nil {
			m.emit(src)
		}
	})
}

// emit never blocks: a report nobody can take is dropped.
func (m *Monitor) emit(src source) {
	var (
		r  rpc.Report
		ok bool
	)
	switch src {
	case sourceSdwdate:
		r, ok = m.sdwdateReport()
	case sourceTor:
		r, ok = m.torReport()
	}
	if !ok {
		return
	}

	m.subMu.Lock()
	defer m.subMu.Unlock()
	if len(m.subs) == 0 {
		m.logger.Debug("no subscriber, dropping status report", "report", r)
		return
	}
	for id, ch := range m.subs {
		select {
		case ch <- r:
		default:
			m.logger.Warn("subscriber lagging, dropping status report", "subscriber", id, "report", r)
		}
	}
}

// subscribers reports the number of registered receivers.
func (m *Monitor) subscribers() int {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	return len(m.subs)
}

func (m *Monitor) sdwdateReport() (rpc.Report, bool) {
	r, err := ReadSdwdate(m.cfg.SdwdateStatusPath)
	if err != nil {
		if errors.Is(err, ErrNoStatus) {
			m.logger.Debug("sdwdate status not present yet", "path", m.cfg.SdwdateStatusPath)
			return nil, false
		}
		m.logger.Warn("could not read sdwdate status", "error", err.Error())
		return nil, false
	}
	return r, true
}

func (m *Monitor) torReport() (rpc.Report, bool) {
	status, err := m.cfg.Tor.Status()
	if err != nil {
		m.logger.Error("could not determine tor status", "error", err.Error())
		return nil, false
	}
	return rpc.SetTorStatus{Status: status}, true
}

func (m *Monitor) stopTimers() {
	m.debounceMu.Lock()
	defer m.debounceMu.Unlock()
	for src, timer := range m.debounce {
		timer.Stop()
		delete(m.debounce, src)
	}
}
