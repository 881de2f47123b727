package transcode

import (
	"fmt"
)

// DecodeError reports a single source image that could not be fetched or
// decoded. It fails the item, never the pipeline.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image %s could not be processed: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
