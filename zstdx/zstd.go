// Package zstdx provides random access to files compressed in the seekable
// zstd format, so that metadata can be read from archived images without
// decompressing them first.
package zstdx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"

	seekable "github.com/SaveTheRbtz/zstd-seekable-format-go"
	"github.com/klauspost/compress/zstd"
)

// Magic starts every zstd frame.
var Magic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// IsZstd reports whether b starts with a zstd frame.
func IsZstd(b []byte) bool {
	return bytes.HasPrefix(b, Magic)
}

// Source reads the decompressed content of a seekable zstd stream at
// arbitrary offsets.
type Source struct {
	r    seekable.Reader
	dec  *zstd.Decoder
	f    *os.File
	size int64
}

// NewSource reads the seek table at the end of rs. The caller keeps ownership
// of rs but must call Close to release the decoder.
func NewSource(rs io.ReadSeeker) (*Source, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("new zstd decoder err, %w", err)
	}
	r, err := seekable.NewReader(rs, dec)
	if err != nil {
		dec.Close()
		return nil, fmt.Errorf("read seek table err, %w", err)
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		r.Close()
		dec.Close()
		return nil, fmt.Errorf("seek to end err, %w", err)
	}
	return &Source{r: r, dec: dec, size: size}, nil
}

// Open opens the seekable zstd file at name. Close releases the file.
func Open(name string) (*Source, error) {
	name = path.Clean(name)
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open file %q err, %w", name, err)
	}
	s, err := NewSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.f = f
	return s, nil
}

// Size returns the decompressed size.
func (s *Source) Size() int64 { return s.size }

func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	var n int
	for n < len(p) {
		k, err := s.r.ReadAt(p[n:], off+int64(n))
		n += k
		if err != nil {
			if err == io.EOF && n == len(p) {
				break
			}
			return n, err
		}
		if k == 0 {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}

func (s *Source) Close() error {
	err := s.r.Close()
	s.dec.Close()
	if s.f != nil {
		if ferr := s.f.Close(); err == nil {
			err = ferr
		}
	}
	return err
}

// Compress writes src to dst as a seekable zstd stream.
func Compress(dst io.Writer, src io.Reader) error {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	defer enc.Close()
	w, err := seekable.NewWriter(dst, enc)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
