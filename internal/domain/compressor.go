package domain

import "io"

// Compressor is the transform stage of the dump pipeline: bytes written to
// the returned writer come out compressed on w.
type Compressor interface {
	WrapWriter(w io.Writer) (io.WriteCloser, error)
}
