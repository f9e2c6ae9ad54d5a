package workers

import (
	"fmt"
	"log/slog"
)

// Manager starts and stops a set of workers together.
type Manager struct {
	workers []Worker
	started []Worker
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger, workers ...Worker) *Manager {
	return &Manager{
		workers: workers,
		logger:  logger,
	}
}

// Start starts the workers in order. If one fails, the ones already running
// are stopped before the error is returned.
func (m *Manager) Start() error {
	m.logger.Info("Starting worker manager", "worker_count", len(m.workers))

	for _, worker := range m.workers {
		if err := worker.Start(); err != nil {
			m.Stop()
			return fmt.Errorf("failed to start worker %s: %w", worker.Name(), err)
		}
		m.started = append(m.started, worker)
		m.logger.Info("Worker started", "name", worker.Name())
	}

	return nil
}

// Stop stops the running workers in reverse start order.
func (m *Manager) Stop() {
	for i := len(m.started) - 1; i >= 0; i-- {
		m.logger.Info("Stopping worker", "name", m.started[i].Name())
		m.started[i].Stop()
	}
	m.started = nil
	m.logger.Info("All workers stopped")
}
