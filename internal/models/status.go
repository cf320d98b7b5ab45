package models

import "time"

// ServiceStatus is the /api/status payload.
type ServiceStatus struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	StartedAt time.Time         `json:"started_at"`
	Caches    map[string]int    `json:"caches"`
	Jobs      map[string]JobRun `json:"jobs,omitempty"`
}

// JobRun is the status of one scheduled job.
type JobRun struct {
	Schedule  string     `json:"schedule"`
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}
