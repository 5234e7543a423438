package models

import "time"

type UpstreamStatus struct {
	Status    string
	CheckedAt time.Time
	Latency   time.Duration
	Error     string
}
