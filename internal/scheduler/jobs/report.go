package jobs

import (
	"context"

	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/pkg/logger"
)

// DeskSnapshot is what the report reads
type DeskSnapshot interface {
	Connected() bool
	Stats() orders.Stats
}

// DeskReportJob logs a periodic summary of the desk
type DeskReportJob struct {
	desk    DeskSnapshot
	clients func() int
	logger  *logger.Logger
}

// NewDeskReportJob creates a report job; clients may be nil
func NewDeskReportJob(desk DeskSnapshot, clients func() int, log *logger.Logger) *DeskReportJob {
	return &DeskReportJob{
		desk:    desk,
		clients: clients,
		logger:  log,
	}
}

// Name returns the job name
func (j *DeskReportJob) Name() string {
	return "desk_report"
}

// Schedule returns the cron schedule
func (j *DeskReportJob) Schedule() string {
	return "0 * * * * *" // Every minute
}

// Run logs the report
func (j *DeskReportJob) Run(ctx context.Context) error {
	st := j.desk.Stats()

	fields := map[string]interface{}{
		"feed_connected": j.desk.Connected(),
		"orders":         st.Total,
		"overrides":      st.Overrides,
		"seq":            st.Seq,
	}
	for state, n := range st.ByState {
		fields["state_"+string(state)] = n
	}
	if j.clients != nil {
		fields["browsers"] = j.clients()
	}

	j.logger.WithFields(fields).Info("Desk report")
	return nil
}
