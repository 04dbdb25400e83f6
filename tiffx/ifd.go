package tiffx

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// EntryLen is the length of an IFD entry in bytes.
const EntryLen = 12

// Directory is a parsed Image File Directory. Fields are keyed by Key(tag);
// a tag that appears twice keeps the last record read.
type Directory struct {
	// Offset is the absolute position of the directory.
	Offset int64
	// Next is the offset of the following directory as stored, relative to
	// the TIFF header. Zero ends the chain.
	Next uint32
	// NextOffset is Next adjusted by the base offset.
	NextOffset int64

	keys   []string
	fields map[string]*Field
}

func NewDirectory(offset int64) *Directory {
	return &Directory{Offset: offset, fields: make(map[string]*Field)}
}

// Add inserts f, replacing any field with the same tag.
func (d *Directory) Add(f *Field) {
	k := f.Key()
	if _, ok := d.fields[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.fields[k] = f
}

// Field looks up a field by its "0x%04x" key.
func (d *Directory) Field(key string) (*Field, bool) {
	f, ok := d.fields[key]
	return f, ok
}

// Tag looks up a field by tag code.
func (d *Directory) Tag(code uint16) (*Field, bool) {
	return d.Field(Key(code))
}

// FieldByName looks up a field by its dictionary name.
func (d *Directory) FieldByName(name string) (*Field, bool) {
	code, ok := TagCode(name)
	if !ok {
		return nil, false
	}
	return d.Tag(code)
}

// Fields returns the fields in the order their tags first appeared.
func (d *Directory) Fields() []*Field {
	res := make([]*Field, len(d.keys))
	for i, k := range d.keys {
		res[i] = d.fields[k]
	}
	return res
}

// Len returns the number of distinct tags.
func (d *Directory) Len() int { return len(d.keys) }

// HasNext reports whether another directory follows this one.
func (d *Directory) HasNext() bool { return d.Next > 0 }

// CorruptError reports structurally invalid data, such as an offset pointing
// outside the source.
type CorruptError struct {
	Offset int64
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("tiff: corrupt data at offset %d: %s", e.Offset, e.Reason)
}

// ErrUnknownType is returned by DecodeEntry for type codes outside 1..12.
var ErrUnknownType = errors.New("tiff: unknown field type")

// DecodeEntry decodes a 12 byte IFD record. For inline fields Data is set to
// the four slot bytes; otherwise the caller must load Size bytes for Data.
func DecodeEntry(b []byte, o Order) (*Field, error) {
	if len(b) < EntryLen {
		return nil, io.ErrUnexpectedEOF
	}
	f := &Field{
		Tag:   o.Uint16(b[0:2]),
		Type:  Type(o.Uint16(b[2:4])),
		Count: o.Uint32(b[4:8]),
		Value: o.Uint32(b[8:12]),
	}
	if !f.Type.Valid() {
		return f, ErrUnknownType
	}
	f.Size = int64(f.Count) * f.Type.Size()
	if f.Inline() {
		f.Data = append([]byte(nil), b[8:12]...)
	}
	return f, nil
}

type ParserOption func(p *Parser)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) {
		p.log = l
	}
}

// WithNextOffsetSize sets the width in bytes of the next-directory offset
// that trails each directory. Exif writers commonly emit 4 bytes; only the
// first 2 are read by default.
func WithNextOffsetSize(n int) ParserOption {
	return func(p *Parser) {
		if n != 2 && n != 4 {
			panic("next offset size must be 2 or 4")
		}
		p.nextSize = int64(n)
	}
}

// Parser reads directories from a TIFF container embedded at base within r.
// Parsed directories are kept by absolute offset, and parsing the same offset
// twice is reported as a cycle.
type Parser struct {
	r        io.ReaderAt
	size     int64
	base     int64
	order    Order
	nextSize int64
	log      *zap.Logger

	dirs map[int64]*Directory
}

// NewParser creates a parser over the first size bytes of r. All offsets
// stored in the container are relative to base.
func NewParser(r io.ReaderAt, size, base int64, order Order, opts ...ParserOption) *Parser {
	p := &Parser{
		r:        r,
		size:     size,
		base:     base,
		order:    order,
		nextSize: 2,
		log:      zap.NewNop(),
		dirs:     make(map[int64]*Directory),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Order() Order { return p.order }
func (p *Parser) Base() int64  { return p.base }

// Abs converts an offset stored in the container to an absolute position.
func (p *Parser) Abs(rel uint32) int64 { return int64(rel) + p.base }

// Parsed returns the directory previously parsed at offset.
func (p *Parser) Parsed(offset int64) (*Directory, bool) {
	d, ok := p.dirs[offset]
	return d, ok
}

// Parse reads the directory at the absolute offset.
func (p *Parser) Parse(offset int64) (*Directory, error) {
	if _, ok := p.dirs[offset]; ok {
		return nil, &CorruptError{Offset: offset, Reason: "directory visited twice"}
	}
	b, err := p.read(offset, 2)
	if err != nil {
		return nil, err
	}
	count := int64(p.order.Uint16(b))
	p.log.Debug("ifd",
		zap.Int64("offset", offset),
		zap.Int64("entries", count),
	)
	table, err := p.read(offset+2, count*EntryLen)
	if err != nil {
		return nil, err
	}

	dir := NewDirectory(offset)
	for i := int64(0); i < count; i++ {
		pos := offset + 2 + i*EntryLen
		f, err := DecodeEntry(table[i*EntryLen:(i+1)*EntryLen], p.order)
		if err != nil {
			return nil, &CorruptError{
				Offset: pos,
				Reason: fmt.Sprintf("tag %v: %v (%d)", Key(f.Tag), err, f.Type),
			}
		}
		if !f.Inline() {
			f.Offset = p.Abs(f.Value)
			f.Data, err = p.read(f.Offset, f.Size)
			if err != nil {
				return nil, fmt.Errorf("tag %v data err, %w", f.Key(), err)
			}
		}
		p.log.Debug("ifd field",
			zap.Int64("offset", pos),
			zap.String("tag", f.Name()),
			zap.String("key", f.Key()),
			zap.Stringer("type", f.Type),
			zap.Uint32("count", f.Count),
			zap.Int64("size", f.Size),
			zap.Uint32("value", f.Value),
		)
		dir.Add(f)
	}

	next, err := p.read(offset+2+count*EntryLen, p.nextSize)
	if err != nil {
		return nil, err
	}
	dir.Next = uint32(p.order.Uint(next))
	dir.NextOffset = p.Abs(dir.Next)
	if dir.HasNext() {
		p.log.Debug("ifd next", zap.Int64("offset", dir.NextOffset))
	}
	p.dirs[offset] = dir
	return dir, nil
}

// read returns n bytes at off, failing with a CorruptError when the range
// lies outside the source.
func (p *Parser) read(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off > p.size || n > p.size-off {
		return nil, &CorruptError{
			Offset: off,
			Reason: fmt.Sprintf("%d bytes exceed source size %d", n, p.size),
		}
	}
	b := make([]byte, n)
	if k, err := p.r.ReadAt(b, off); k < len(b) {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %d bytes at %d err, %w", n, off, err)
	}
	return b, nil
}
