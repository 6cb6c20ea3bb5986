package cisbma

import (
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type Compression byte

const (
	CompressionInvalid Compression = iota
	CompressionNone
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZ
	CompressionBZip2
)

var compressionSigs = map[Compression][]byte{
	CompressionGzip:  {0x1f, 0x8b, 0x08},
	CompressionZip:   {0x50, 0x4b, 0x03, 0x04},
	CompressionXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	CompressionZ:     {0x1f, 0x9d},
	CompressionBZip2: {0x42, 0x5a, 0x68},
}

// DetectCompression reads the first bytes of the stream and checks them
// against known magic numbers. Signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectCompression(r io.Reader) (Compression, error) {
	buff := make([]byte, 6)
	if _, err := r.Read(buff); err != nil {
		return CompressionInvalid, err
	}

Outer:
	for c, sig := range compressionSigs {
		for position := range sig {
			if buff[position] != sig[position] {
				continue Outer
			}
		}
		return c, nil
	}

	return CompressionNone, nil
}

// MaybeDecompress wraps the open file in the decompressor its magic bytes
// call for, or returns the file itself when no compression is detected.
func MaybeDecompress(f *os.File) (io.ReadCloser, error) {
	c, err := DetectCompression(f)
	if err != nil {
		return nil, err
	}
	// Rewind before handing the stream to a decompressor: they read their
	// headers eagerly.
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	switch c {
	case CompressionGzip:
		return gzip.NewReader(f)
	case CompressionZip:
		return &readCloserFaker{zipstream.NewReader(f)}, nil
	case CompressionBZip2:
		return &readCloserFaker{bzip2.NewReader(f)}, nil
	case CompressionXZ:
		reader, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		return &readCloserFaker{reader}, nil
	case CompressionZ:
		return zlib.NewReader(f)
	}

	return f, nil
}

// OpenText opens path for reading, transparently decompressing it if
// needed. Closing the returned reader closes the underlying file.
func OpenText(path string) (io.ReadCloser, error) {
	f, err := os.Open(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	r, err := MaybeDecompress(f)
	if err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	return &fileReadCloser{r: r, f: f}, nil
}

// readCloserFaker "upgrades" readers that don't need to be closed
type readCloserFaker struct {
	io.Reader
}

func (c *readCloserFaker) Close() error {
	return nil
}

// fileReadCloser closes both the decompressor and the file beneath it.
type fileReadCloser struct {
	r io.ReadCloser
	f *os.File
}

func (c *fileReadCloser) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func (c *fileReadCloser) Close() error {
	if c.r != io.ReadCloser(c.f) {
		c.r.Close()
	}
	return c.f.Close()
}

// GzWriter writes gzip-compressed text to a file. Close flushes the gzip
// stream before closing the file.
type GzWriter struct {
	*gzip.Writer
	f *os.File
}

// CreateGz creates (truncating) a gzipped output file at path.
func CreateGz(path string) (*GzWriter, error) {
	f, err := os.Create(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &GzWriter{Writer: gzip.NewWriter(f), f: f}, nil
}

func (w *GzWriter) Close() error {
	if err := w.Writer.Close(); err != nil {
		w.f.Close()
		return pfx.Err(err)
	}
	return w.f.Close()
}
