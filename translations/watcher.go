package translations

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 300 * time.Millisecond

// Watcher reloads *.yaml files from a directory into the store whenever they change.
// Rows from files overwrite rows edited through the API.
type Watcher struct {
	svc *Service
	dir string
	log *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	loaded  int
}

func NewWatcher(svc *Service, dir string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{svc: svc, dir: dir, log: log, pending: map[string]time.Time{}}
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// LoadAll applies every YAML file currently in the directory.
func (w *Watcher) LoadAll(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		w.reload(ctx, filepath.Join(w.dir, e.Name()))
	}
	return nil
}

// Loaded reports how many files have been applied so far.
func (w *Watcher) Loaded() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

func (w *Watcher) reload(ctx context.Context, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("read translations file", zap.String("path", path), zap.Error(err))
		return
	}
	n, err := w.svc.Load(ctx, raw, true)
	if err != nil {
		w.log.Warn("load translations file", zap.String("path", path), zap.Error(err))
		return
	}
	w.mu.Lock()
	w.loaded++
	w.mu.Unlock()
	w.log.Info("translations reloaded", zap.String("path", path), zap.Int("rows", n))
}

// Run loads the directory and then watches it until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	if err := w.LoadAll(ctx); err != nil {
		return err
	}

	tick := time.NewTicker(debounce / 3)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isYAML(ev.Name) || !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			w.mu.Lock()
			w.pending[ev.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("translations watcher", zap.Error(err))
		case <-tick.C:
			for _, path := range w.due() {
				w.reload(ctx, path)
			}
		}
	}
}

// due returns files whose last change is older than the debounce window.
func (w *Watcher) due() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, at := range w.pending {
		if time.Since(at) >= debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	return out
}
