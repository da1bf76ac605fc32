package compressor

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGzipCompressor(t *testing.T) {
	Convey("Given a GzipCompressor", t, func() {
		comp := NewGzip()

		Convey("WrapWriter", func() {
			Convey("When streaming content through the writer", func() {
				content := []byte("-- PostgreSQL database dump\nCREATE TABLE users (id serial);\n")

				var sink bytes.Buffer
				gz, err := comp.WrapWriter(&sink)
				So(err, ShouldBeNil)

				_, err = gz.Write(content)
				So(err, ShouldBeNil)
				So(gz.Close(), ShouldBeNil)

				Convey("The sink should hold a valid gzip stream of the input", func() {
					reader, err := gzip.NewReader(&sink)
					So(err, ShouldBeNil)
					defer reader.Close()

					decompressed, err := io.ReadAll(reader)
					So(err, ShouldBeNil)
					So(decompressed, ShouldResemble, content)
				})
			})

			Convey("When nothing is written before Close", func() {
				var sink bytes.Buffer
				gz, err := comp.WrapWriter(&sink)
				So(err, ShouldBeNil)
				So(gz.Close(), ShouldBeNil)

				Convey("The sink should still be a valid, empty gzip stream", func() {
					reader, err := gzip.NewReader(&sink)
					So(err, ShouldBeNil)
					defer reader.Close()

					decompressed, err := io.ReadAll(reader)
					So(err, ShouldBeNil)
					So(len(decompressed), ShouldEqual, 0)
				})
			})
		})
	})
}
