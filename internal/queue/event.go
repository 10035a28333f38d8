// Package queue defines message payloads exchanged over the message broker.
package queue

// LabReportQueueName is the default queue lab-report events are published to.
const LabReportQueueName = "lab_report.processed"

// LabReportProcessedEvent is published after an upload has been parsed and
// answered.  It only describes the shape of the file; cell values never leave
// the request.
type LabReportProcessedEvent struct {
	EventID     string   `json:"event_id"`
	RequestID   string   `json:"request_id"`
	FileName    string   `json:"file_name"`
	SizeBytes   int64    `json:"size_bytes"`
	Columns     []string `json:"columns"`
	RowCount    int      `json:"row_count"`
	ProcessedAt string   `json:"processed_at"`
}
