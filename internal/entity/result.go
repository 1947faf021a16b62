package entity

import (
	"encoding/json"
	"time"

	"github.com/joseph-ayodele/sugar-reports/constants"
)

// DocumentResult is the per-document outcome of a batch or upload run.
type DocumentResult struct {
	Document string
	Status   constants.DocumentStatus
	Record   ReportRecord
	Error    string
	Duration time.Duration
}

// OK reports whether the document produced a record.
func (r DocumentResult) OK() bool { return r.Status == constants.DocumentStatusOK }

type failedResultJSON struct {
	File   string `json:"file"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

type okResultJSON struct {
	File string `json:"file"`
	recordJSON
}

// MarshalJSON renders successes as the record plus "file", and failures as
// {"file", "status", "error"} so callers can tell them apart per entry.
func (r DocumentResult) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(failedResultJSON{File: r.Document, Status: string(r.Status), Error: r.Error})
	}
	return json.Marshal(okResultJSON{File: r.Document, recordJSON: r.Record.wire()})
}
