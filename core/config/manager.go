// Package config loads and watches the engine tuning file. All force and
// clustering constants are configuration rather than hard-coded values,
// since the defaults are empirically tuned.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/adalundhe/mindmesh/core/cluster"
	"github.com/adalundhe/mindmesh/core/layout"
	"github.com/adalundhe/mindmesh/core/physics"
)

// reloadDebounce coalesces bursts of write events from editors that save
// in multiple syscalls.
const reloadDebounce = 100 * time.Millisecond

// Config is the full engine tuning surface.
type Config struct {
	Physics physics.Tuning `yaml:"physics"`
	Cluster cluster.Config `yaml:"cluster"`
	Session layout.Config  `yaml:"session"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		Physics: physics.DefaultTuning(),
		Cluster: cluster.DefaultConfig(),
		Session: layout.DefaultConfig(),
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	return c.Cluster.Validate()
}

// Manager holds the active configuration behind an atomic pointer and
// optionally hot-reloads it when the file changes on disk.
type Manager struct {
	current atomic.Pointer[Config]
	path    string
	logger  *slog.Logger

	watcherMu sync.RWMutex
	watchers  []func(Config)

	watchOnce sync.Once
	stopWatch chan struct{}
}

// NewManager loads the file at path, or the defaults when path is empty.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		path:      path,
		logger:    logger,
		stopWatch: make(chan struct{}),
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	m.current.Store(&cfg)
	return m, nil
}

// Load reads and validates a tuning file. Sections absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Get returns the active configuration.
func (m *Manager) Get() Config {
	return *m.current.Load()
}

// OnChange registers a callback invoked after every successful reload.
func (m *Manager) OnChange(fn func(Config)) {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()
	m.watchers = append(m.watchers, fn)
}

// Watch starts hot-reloading the config file. Subsequent calls are
// no-ops. Reload failures keep the previous configuration active.
func (m *Manager) Watch() error {
	if m.path == "" {
		return nil
	}

	var watchErr error
	m.watchOnce.Do(func() {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			watchErr = fmt.Errorf("config watch: %w", err)
			return
		}
		// Watch the directory, not the file: editors replace files on
		// save, which drops a file-level watch.
		if err := watcher.Add(filepath.Dir(m.path)); err != nil {
			watcher.Close()
			watchErr = fmt.Errorf("config watch %s: %w", m.path, err)
			return
		}
		go m.watchLoop(watcher)
	})
	return watchErr
}

// Stop ends hot-reloading.
func (m *Manager) Stop() {
	close(m.stopWatch)
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-m.stopWatch:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, m.reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (m *Manager) reload() {
	cfg, err := Load(m.path)
	if err != nil {
		m.logger.Warn("config reload failed, keeping previous", "error", err)
		return
	}
	m.current.Store(&cfg)
	m.logger.Info("config reloaded", "path", m.path)

	m.watcherMu.RLock()
	watchers := append([](func(Config))(nil), m.watchers...)
	m.watcherMu.RUnlock()
	for _, fn := range watchers {
		fn(cfg)
	}
}
