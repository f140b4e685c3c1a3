// Package nodelog holds the named-logger registry backing the control
// plane's logging endpoints: a *logrus.Logger obtained here by name
// has its level read and changed at runtime over HTTP. The node,
// message and control packages log through the logger handed to them
// at construction, not through loggers obtained from this registry.
package nodelog

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is a process-wide set of named loggers, each independently
// levelable.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*logrus.Logger
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{loggers: map[string]*logrus.Logger{}}
}

// Get returns the named logger, creating it at logrus.InfoLevel on
// first use.
func (r *Registry) Get(name string) *logrus.Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.loggers[name]; ok {
		return l
	}

	l = logrus.New()
	l.SetLevel(logrus.InfoLevel)
	r.loggers[name] = l
	return l
}

// Levels returns the current level of every registered logger, keyed
// by name.
func (r *Registry) Levels() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.loggers))
	for name, l := range r.loggers {
		out[name] = l.GetLevel().String()
	}
	return out
}

// SetLevel parses levelName with logrus.ParseLevel and applies it to
// the named logger, creating the logger if it doesn't exist yet.
func (r *Registry) SetLevel(name, levelName string) error {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("nodelog: invalid level %q: %w", levelName, err)
	}

	r.Get(name).SetLevel(level)
	return nil
}

// SetLevels applies a batch of name->level updates, collecting and
// returning the first error encountered while still attempting every
// update.
func (r *Registry) SetLevels(levels map[string]string) error {
	var firstErr error
	for name, levelName := range levels {
		if err := r.SetLevel(name, levelName); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
