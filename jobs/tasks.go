package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportRender renders a report to PDF out-of-band.
	TaskReportRender = "report:render"
	// TaskRenewalScan finds vehicle documents nearing expiry.
	TaskRenewalScan = "renewal:scan"
)

// ReportRenderPayload names the report to render and its parameters.
type ReportRenderPayload struct {
	Report   string `json:"report"`
	ReportID int64  `json:"reportId,omitempty"`
	Kind     string `json:"kind,omitempty"`
	TruckID  int64  `json:"truckId,omitempty"`
}

// NewReportRenderTask constructs an Asynq task.
func NewReportRenderTask(payload ReportRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportRender, data), nil
}

// RenewalScanPayload controls the scan window.
type RenewalScanPayload struct {
	WindowDays int `json:"windowDays"`
}

// NewRenewalScanTask constructs an Asynq task.
func NewRenewalScanTask(payload RenewalScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRenewalScan, data), nil
}
