package scheduler

import (
	"context"
	"time"
)

// historyLimit bounds the results kept per job
const historyLimit = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a six-field cron expression (seconds first) or a
	// descriptor such as "@every 15s"
	Schedule() string
}

// JobResult is the outcome of one execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the latest results of one job
type JobHistory struct {
	Results []JobResult
}

// AddResult appends result, dropping the oldest past historyLimit
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns up to n of the most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	out := make([]JobResult, n)
	copy(out, h.Results[len(h.Results)-n:])
	return out
}

// Failures counts failed results
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is in [0, 1]; 0 with no runs
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}
