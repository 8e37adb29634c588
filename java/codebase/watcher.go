package codebase

import (
	"os"
	"time"

	"github.com/dhamidi/postfix/postfix/snippet"
)

// ConfigWatcher reloads a template config file whenever its modification
// time changes and installs the new templates into a Codebase. A config
// that fails to load leaves the previous templates in place.
type ConfigWatcher struct {
	codebase     *Codebase
	path         string
	stopCh       chan struct{}
	doneCh       chan struct{}
	pollInterval time.Duration
	modTime      time.Time
}

func NewConfigWatcher(c *Codebase, path string) *ConfigWatcher {
	return &ConfigWatcher{
		codebase:     c,
		path:         path,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
	}
}

// Start records the current modification time and polls in the background.
func (w *ConfigWatcher) Start() {
	if info, err := os.Stat(w.path); err == nil {
		w.modTime = info.ModTime()
	}
	go w.run()
}

// Stop ends polling and waits for the background goroutine.
func (w *ConfigWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *ConfigWatcher) run() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reloads the config if it changed since the last look. It reports
// whether new templates were installed.
func (w *ConfigWatcher) check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		log.Debugf("template config %s: %v", w.path, err)
		return false
	}
	if info.ModTime().Equal(w.modTime) {
		return false
	}
	w.modTime = info.ModTime()

	cfg, err := snippet.Load(w.path)
	if err != nil {
		log.Errorf("keeping previous templates: %v", err)
		return false
	}
	w.codebase.SetManager(snippet.NewManager(cfg))
	log.Infof("reloaded %d templates from %s", len(cfg.Templates), w.path)
	return true
}
