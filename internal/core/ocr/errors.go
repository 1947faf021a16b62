package ocr

import (
	"errors"
	"fmt"
)

// ErrAcquisitionFailed is matched by every AcquisitionError.
var ErrAcquisitionFailed = errors.New("text acquisition failed")

// AcquisitionError is the terminal, per-document failure: neither the native
// text layer nor OCR produced usable text.
type AcquisitionError struct {
	Document  string
	NativeErr error // nil when the layer parsed but was empty
	OCRErr    error // nil when OCR ran but produced only whitespace
}

func (e *AcquisitionError) Error() string {
	msg := fmt.Sprintf("%s: document %q", ErrAcquisitionFailed, e.Document)
	if e.NativeErr != nil {
		msg += fmt.Sprintf("; native: %v", e.NativeErr)
	} else {
		msg += "; native: no text"
	}
	if e.OCRErr != nil {
		msg += fmt.Sprintf("; ocr: %v", e.OCRErr)
	} else {
		msg += "; ocr: no text"
	}
	return msg
}

func (e *AcquisitionError) Unwrap() []error {
	errs := []error{ErrAcquisitionFailed}
	if e.NativeErr != nil {
		errs = append(errs, e.NativeErr)
	}
	if e.OCRErr != nil {
		errs = append(errs, e.OCRErr)
	}
	return errs
}
