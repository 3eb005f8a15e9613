package domain

import "time"

// BatchProgress is the observable state of one dispatch invocation.
// Counters hold succeeded+failed <= current <= total while the batch
// is running and succeeded+failed == total once Done is set.
type BatchProgress struct {
	BatchID    string     `json:"batchId"`
	Total      int        `json:"total"`
	Current    int        `json:"current"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Done       bool       `json:"done"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
