package workers

// Worker is a background job owned by the Manager.
type Worker interface {
	// Start schedules the worker and returns without blocking.
	Start() error

	// Stop waits for running jobs to finish.
	Stop()

	Name() string
}
