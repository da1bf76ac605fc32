package compressor

import (
	"compress/gzip"
	"fmt"
	"io"
)

type GzipCompressor struct{}

func NewGzip() *GzipCompressor {
	return &GzipCompressor{}
}

// WrapWriter turns w into the sink of a gzip stream. Closing the returned
// writer flushes the gzip trailer but does not close w.
func (g *GzipCompressor) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	return gz, nil
}
