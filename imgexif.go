package imgexif

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/sebnyberg/imgexif/jpegx"
	"github.com/sebnyberg/imgexif/tiffx"
	"github.com/sebnyberg/imgexif/zstdx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var _ Source = new(io.SectionReader)
var _ Source = new(zstdx.Source)
var _ Source = new(File)

// Source is a random access view of a file.
type Source interface {
	io.ReaderAt
	// Size returns the number of readable bytes.
	Size() int64
}

// ErrNotExif is returned by ReadDirs for files without an Exif segment.
var ErrNotExif = jpegx.ErrNotExif

type Option func(c *config)

type config struct {
	log      *zap.Logger
	nextSize int
}

// WithLogger enables diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithNextOffsetSize sets how many bytes of the next-directory offset are read
// after each directory: 2 (the default) or 4. Big-endian files need 4 for
// their thumbnail directory to be found.
func WithNextOffsetSize(n int) Option {
	return func(c *config) {
		if n != 2 && n != 4 {
			panic("next offset size must be 2 or 4")
		}
		c.nextSize = n
	}
}

func newConfig(opts []Option) *config {
	c := &config{log: zap.NewNop(), nextSize: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dirs holds the directories of one Exif segment. Directories that are not
// present are nil.
type Dirs struct {
	Header jpegx.Header
	IFD0   *tiffx.Directory
	IFD1   *tiffx.Directory
	Exif   *tiffx.Directory
	GPS    *tiffx.Directory
}

// ReadDirs locates the Exif segment of the JPEG in src and parses IFD0, the
// IFD1 chained to it, and the Exif and GPS directories it points to. Files
// without an Exif segment return ErrNotExif. Any other error aborts the read.
func ReadDirs(src Source, opts ...Option) (*Dirs, error) {
	c := newConfig(opts)
	h, err := jpegx.Locate(src, c.log)
	if err != nil {
		return nil, err
	}
	p := tiffx.NewParser(src, src.Size(), h.Base, h.Order,
		tiffx.WithLogger(c.log),
		tiffx.WithNextOffsetSize(c.nextSize),
	)
	res := &Dirs{Header: h}
	res.IFD0, err = p.Parse(h.IFD0)
	if err != nil {
		return nil, fmt.Errorf("parse ifd0 err, %w", err)
	}
	if res.IFD0.HasNext() {
		res.IFD1, err = p.Parse(res.IFD0.NextOffset)
		if err != nil {
			return nil, fmt.Errorf("parse ifd1 err, %w", err)
		}
	}
	if f, ok := res.IFD0.Tag(tiffx.TagExifIFDPointer); ok {
		res.Exif, err = p.Parse(p.Abs(f.Value))
		if err != nil {
			return nil, fmt.Errorf("parse exif ifd err, %w", err)
		}
	}
	if f, ok := res.IFD0.Tag(tiffx.TagGPSInfo); ok {
		res.GPS, err = p.Parse(p.Abs(f.Value))
		if err != nil {
			return nil, fmt.Errorf("parse gps ifd err, %w", err)
		}
	}
	return res, nil
}

// Read decodes the Exif record of the JPEG in src. A file without an Exif
// segment yields a disabled record and no error.
//
// When required tags are missing, the record is returned with every field
// that could be resolved, together with an error combining one
// *MissingTagError per tag.
func Read(src Source, opts ...Option) (Record, error) {
	dirs, err := ReadDirs(src, opts...)
	if errors.Is(err, ErrNotExif) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, err
	}
	return Assemble(dirs)
}

// ReadFile reads the Exif record of the file at name. See OpenFile.
func ReadFile(name string, opts ...Option) (Record, error) {
	f, err := OpenFile(name)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()
	return Read(f, opts...)
}

// File is an opened image file.
type File struct {
	Source
	closers []io.Closer
}

// OpenFile opens the JPEG file at name. Files compressed in the seekable zstd
// format are decompressed on the fly as they are read.
func OpenFile(name string) (*File, error) {
	name = path.Clean(name)
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open file %q err, %w", name, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %q err, %w", name, err)
	}

	magic := make([]byte, len(zstdx.Magic))
	n, _ := f.ReadAt(magic, 0)
	if !zstdx.IsZstd(magic[:n]) {
		return &File{Source: io.NewSectionReader(f, 0, fi.Size()), closers: []io.Closer{f}}, nil
	}
	src, err := zstdx.NewSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open zstd archive %q err, %w", name, err)
	}
	return &File{Source: src, closers: []io.Closer{src, f}}, nil
}

// Close releases the file.
func (f *File) Close() error {
	var err error
	for _, c := range f.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
