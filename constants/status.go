package constants

// DocumentStatus is the per-document outcome of a pipeline run.
type DocumentStatus string

const (
	DocumentStatusOK                DocumentStatus = "OK"
	DocumentStatusAcquisitionFailed DocumentStatus = "ACQUISITION_FAILED" // neither text layer nor OCR produced text
	DocumentStatusFailed            DocumentStatus = "FAILED"             // load error, timeout, cancellation
)
