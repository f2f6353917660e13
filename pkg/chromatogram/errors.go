package chromatogram

import "fmt"

// MissingFieldError reports a required tag or intensity channel that the
// trace container does not carry.
type MissingFieldError struct {
	Tag string
}

func (e *MissingFieldError) Error() string {
	return "missing required tag: " + e.Tag
}

// RenderError wraps any failure to produce the output image.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
