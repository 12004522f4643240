package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Registry manages named drafting-convention sets loaded from YAML files,
// so a deployment can teach the classifier the phrasing of another
// consolidated code without a rebuild.
type Registry struct {
	mu          sync.RWMutex
	conventions map[string]*Conventions
	dir         string
	watcher     *fsnotify.Watcher
	stopChan    chan struct{}
	onChange    func(event string, conv *Conventions)
}

// NewRegistry creates an empty registry pre-seeded with the default
// conventions.
func NewRegistry() *Registry {
	r := &Registry{conventions: make(map[string]*Conventions)}
	def := Default()
	r.conventions[def.Name] = def
	return r
}

// Register validates, compiles and adds a convention set.
func (r *Registry) Register(conv *Conventions) error {
	if err := conv.Validate(); err != nil {
		return fmt.Errorf("invalid conventions: %w", err)
	}
	if err := conv.Compile(); err != nil {
		return fmt.Errorf("compiling conventions %q: %w", conv.Name, err)
	}

	r.mu.Lock()
	r.conventions[conv.Name] = conv
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange("registered", conv)
	}
	return nil
}

// Get returns a convention set by name.
func (r *Registry) Get(name string) (*Conventions, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conventions[name]
	return conv, ok
}

// List returns the registered convention names, unordered.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.conventions))
	for name := range r.conventions {
		names = append(names, name)
	}
	return names
}

// LoadFile loads a single conventions YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var conv Conventions
	if err := yaml.Unmarshal(data, &conv); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if conv.Name == "" {
		conv.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := r.Register(&conv); err != nil {
		return fmt.Errorf("registering conventions: %w", err)
	}
	return nil
}

// LoadDirectory loads all .yaml/.yml files from a directory.
func (r *Registry) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	r.dir = dir

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.LoadFile(path); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading conventions: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// Reload reloads all convention sets from the configured directory.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	r.mu.Lock()
	r.conventions = make(map[string]*Conventions)
	def := Default()
	r.conventions[def.Name] = def
	r.mu.Unlock()

	return r.LoadDirectory(r.dir)
}

// SetOnChange sets a callback invoked when convention sets change.
func (r *Registry) SetOnChange(fn func(event string, conv *Conventions)) {
	r.onChange = fn
}

// Watch starts watching the configured directory for changes.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

// StopWatch stops watching the convention directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Write == fsnotify.Write:
				if err := r.LoadFile(event.Name); err == nil && r.onChange != nil {
					if conv, ok := r.Get(nameFromPath(event.Name)); ok {
						r.onChange("reloaded", conv)
					}
				}
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.mu.Lock()
				delete(r.conventions, nameFromPath(event.Name))
				r.mu.Unlock()
			}
		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func nameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
