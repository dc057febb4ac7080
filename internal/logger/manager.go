// internal/logger/manager.go

package logger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/orgoj/anglerfish/internal/config"
)

// Manager builds the extra destinations listed in the configuration and
// attaches them to a Logger.
type Manager struct {
	sinks  map[string]Sink
	mu     sync.RWMutex
	logger *Logger
}

// NewManager creates a manager attaching sinks to lgr.
func NewManager(lgr *Logger) *Manager {
	return &Manager{
		sinks:  make(map[string]Sink),
		logger: lgr,
	}
}

// InitDestinations creates every enabled destination and attaches it to the
// logger. A destination that fails to initialize is skipped; the others are
// still attached and the failures are returned together.
func (m *Manager) InitDestinations(destinations []config.LogDestination) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var initErrors []error
	for _, dest := range destinations {
		if !dest.Enabled {
			continue
		}
		if _, exists := m.sinks[dest.Name]; exists {
			initErrors = append(initErrors, fmt.Errorf("dest '%s': already initialized", dest.Name))
			continue
		}

		var sink Sink
		var err error

		switch dest.Type {
		case "file":
			sink, err = NewFileSink(dest)
		case "gelf":
			sink, err = NewGelfSink(dest)
		default:
			err = fmt.Errorf("unsupported logger type: %s", dest.Type)
		}

		if err != nil {
			m.logger.Error("Failed to initialize logger destination '%s' (type: %s): %v", dest.Name, dest.Type, err)
			initErrors = append(initErrors, fmt.Errorf("dest '%s': %w", dest.Name, err))
			continue
		}

		m.sinks[dest.Name] = sink
		m.logger.AddSink(sink)
		m.logger.Debug("Initialized logger destination '%s' (type: %s)", dest.Name, dest.Type)
	}

	if len(initErrors) > 0 {
		return fmt.Errorf("failed to initialize some loggers: %w", errors.Join(initErrors...))
	}
	return nil
}

// GetSink retrieves a destination by name.
// Returns nil if the destination is not found or not initialized.
func (m *Manager) GetSink(name string) Sink {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sinks[name]
}

// Names returns the names of all initialized destinations.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sinks))
	for name := range m.sinks {
		names = append(names, name)
	}
	return names
}

// CloseAll detaches and closes every managed destination concurrently.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var wg sync.WaitGroup
	for name, sink := range m.sinks {
		m.logger.RemoveSink(sink)
		wg.Add(1)
		go func(name string, sink Sink) {
			defer wg.Done()
			if err := sink.Close(); err != nil {
				StderrReporter().Report("error closing destination '%s': %v", name, err)
			}
		}(name, sink)
	}
	wg.Wait()
	m.sinks = make(map[string]Sink)
}
