package texture

import (
	"errors"
	"fmt"
)

// Acquisition stages
const (
	StageFetch  = "fetch"
	StageDecode = "decode"
	StageEncode = "encode"
)

// ErrTooManyPixels rejects sources whose declared dimensions exceed the decode budget
var ErrTooManyPixels = errors.New("image dimensions too large")

// AcquisitionError reports a failed fetch or decode for one URL.
// The wall drops the item; nothing is retried.
type AcquisitionError struct {
	URL   string
	Stage string
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}
