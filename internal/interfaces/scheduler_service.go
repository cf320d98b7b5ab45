package interfaces

import "time"

// JobStatus represents the current status of a scheduled job.
type JobStatus struct {
	Name        string
	Schedule    string
	Description string
	LastRun     *time.Time
	NextRun     *time.Time
	IsRunning   bool
	LastError   string
}

// SchedulerService manages cron-based background jobs.
type SchedulerService interface {
	// RegisterJob registers a job under a cron schedule. Must be called
	// before Start.
	RegisterJob(name, schedule, description string, handler func() error) error

	// Start begins running registered jobs on their schedules.
	Start() error

	// Stop halts the scheduler, waiting for a running job to finish.
	Stop() error

	// IsRunning reports whether the scheduler is active.
	IsRunning() bool

	// TriggerJob runs a registered job immediately, outside its schedule.
	TriggerJob(name string) error

	// GetJobStatus returns the status of a specific job.
	GetJobStatus(name string) (*JobStatus, error)

	// GetAllJobStatuses returns all job statuses keyed by name.
	GetAllJobStatuses() map[string]*JobStatus
}
