package utils

import (
	"errors"
	"fmt"
	"sync"
)

// ShutdownHook collects named cleanup functions for graceful shutdown
// (SIGINT/SIGTERM or server.shutdown). Hooks run in reverse registration
// order so that later components, which usually depend on earlier ones,
// are torn down first.
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func() error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup function. The name is used for logging.
func (s *ShutdownHook) Register(name string, cleanupFn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: cleanupFn})
	Verbose("Registered shutdown hook: %s", name)
}

// Shutdown runs every hook, continuing past failures, and clears the list.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	if len(hooks) == 0 {
		return nil
	}

	Verbose("Executing %d shutdown hook(s)", len(hooks))
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		Verbose("Running shutdown hook: %s", hook.name)
		if err := hook.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			Warn("Shutdown hook %s failed: %v", hook.name, err)
		}
	}

	return errors.Join(errs...)
}

// Count returns the number of registered hooks.
func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}
