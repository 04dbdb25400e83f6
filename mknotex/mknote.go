// Package mknotex decodes vendor maker notes: the opaque MakerNote field of
// the Exif directory.
//
// Many vendors store the note as an IFD of their own, behind a fixed preamble
// and with data offsets relative to the start of the note instead of the TIFF
// header. The layout is not standardized, so decoding is lenient: a field
// whose data lies outside the note is dropped and reported, and the remaining
// fields are still returned.
package mknotex

import (
	"fmt"

	"github.com/sebnyberg/imgexif/tiffx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultPreamble is the number of vendor bytes before the field count.
const DefaultPreamble = 12

// CountRule decodes the two byte field count that follows the preamble.
type CountRule func(b [2]byte, o tiffx.Order) int

// NibbleCount weighs the second byte by 16 instead of 256, regardless of
// byte order. It agrees with OrderCount for little-endian notes of fewer than
// 256 fields.
func NibbleCount(b [2]byte, _ tiffx.Order) int {
	return int(b[0]) + int(b[1])*16
}

// OrderCount decodes the count like any other TIFF SHORT.
func OrderCount(b [2]byte, o tiffx.Order) int {
	return int(o.Uint16(b[:]))
}

type Option func(d *Decoder)

// WithPreamble sets the number of bytes skipped before the field count.
func WithPreamble(n int) Option {
	return func(d *Decoder) {
		if n < 0 {
			panic("negative preamble")
		}
		d.preamble = n
	}
}

func WithCountRule(rule CountRule) Option {
	return func(d *Decoder) {
		d.count = rule
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// Decoder decodes maker notes written in a given byte order.
type Decoder struct {
	order    tiffx.Order
	preamble int
	count    CountRule
	log      *zap.Logger
}

func New(order tiffx.Order, opts ...Option) *Decoder {
	d := &Decoder{
		order:    order,
		preamble: DefaultPreamble,
		count:    NibbleCount,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses note. The returned directory holds every field that could be
// read; field offsets are relative to note. The error, if any, combines one
// *tiffx.CorruptError per dropped field and can be split with
// multierr.Errors.
func (d *Decoder) Decode(note []byte) (*tiffx.Directory, error) {
	dir := tiffx.NewDirectory(0)
	size := int64(len(note))
	pos := int64(d.preamble)
	if pos+2 > size {
		return dir, &tiffx.CorruptError{
			Offset: pos,
			Reason: fmt.Sprintf("maker note of %d bytes has no field count", size),
		}
	}
	count := d.count([2]byte{note[pos], note[pos+1]}, d.order)
	pos += 2
	d.log.Debug("maker note",
		zap.Int64("size", size),
		zap.Int("entries", count),
		zap.Stringer("order", d.order),
	)

	var errs error
	for i := 0; i < count; i, pos = i+1, pos+tiffx.EntryLen {
		if pos+tiffx.EntryLen > size {
			errs = multierr.Append(errs, &tiffx.CorruptError{
				Offset: pos,
				Reason: fmt.Sprintf("maker note ends after %d of %d entries", i, count),
			})
			break
		}
		f, err := tiffx.DecodeEntry(note[pos:pos+tiffx.EntryLen], d.order)
		if err != nil {
			errs = multierr.Append(errs, d.skip(pos, f, err.Error()))
			continue
		}
		if !f.Inline() {
			f.Offset = int64(f.Value)
			if f.Offset+f.Size > size {
				errs = multierr.Append(errs, d.skip(pos, f,
					fmt.Sprintf("data [%d, %d) exceeds note length %d", f.Offset, f.Offset+f.Size, size)))
				continue
			}
			f.Data = note[f.Offset : f.Offset+f.Size]
		}
		d.log.Debug("maker note field",
			zap.Int64("offset", pos),
			zap.String("key", f.Key()),
			zap.Stringer("type", f.Type),
			zap.Uint32("count", f.Count),
			zap.Int64("size", f.Size),
		)
		dir.Add(f)
	}
	return dir, errs
}

func (d *Decoder) skip(pos int64, f *tiffx.Field, reason string) error {
	err := &tiffx.CorruptError{
		Offset: pos,
		Reason: fmt.Sprintf("maker note tag %v: %s", f.Key(), reason),
	}
	d.log.Warn("skipping maker note field",
		zap.String("key", f.Key()),
		zap.Stringer("type", f.Type),
		zap.Int64("offset", pos),
		zap.Error(err),
	)
	return err
}
