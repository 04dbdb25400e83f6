// Package exiftest builds synthetic Exif containers and JPEG files for tests.
//
// Directories are described as trees of entries and laid out the way cameras
// write them: the TIFF header, then every directory, then the out-of-line data
// of entries larger than four bytes. All offsets are relative to the TIFF
// header.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/tiff"
)

// Field types.
const (
	Byte      uint16 = 1
	ASCII     uint16 = 2
	Short     uint16 = 3
	Long      uint16 = 4
	Rational  uint16 = 5
	Undefined uint16 = 7
)

type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	// Data is the encoded payload. Payloads of four bytes or less are stored
	// in the entry itself.
	Data []byte
	// Sub makes the entry a LONG pointer to another directory.
	Sub *Dir
	// At is written verbatim to the value slot when Data and Sub are nil.
	At uint32
}

type Dir struct {
	Entries []Entry
	Next    *Dir
}

// Set replaces the entry with the same tag, or appends e.
func (d *Dir) Set(e Entry) {
	for i := range d.Entries {
		if d.Entries[i].Tag == e.Tag {
			d.Entries[i] = e
			return
		}
	}
	d.Entries = append(d.Entries, e)
}

// Remove drops every entry with the tag.
func (d *Dir) Remove(tag uint16) {
	kept := d.Entries[:0]
	for _, e := range d.Entries {
		if e.Tag != tag {
			kept = append(kept, e)
		}
	}
	d.Entries = kept
}

// Builder encodes entries and containers in a byte order.
type Builder struct {
	Order binary.ByteOrder
}

func (b Builder) marker() string {
	if b.Order == binary.BigEndian {
		return "MM"
	}
	return "II"
}

func (b Builder) ASCII(tag uint16, s string) Entry {
	data := append([]byte(s), 0)
	return Entry{Tag: tag, Type: ASCII, Count: uint32(len(data)), Data: data}
}

func (b Builder) Bytes(tag uint16, v ...byte) Entry {
	return Entry{Tag: tag, Type: Byte, Count: uint32(len(v)), Data: v}
}

func (b Builder) Undefined(tag uint16, v []byte) Entry {
	return Entry{Tag: tag, Type: Undefined, Count: uint32(len(v)), Data: v}
}

func (b Builder) Shorts(tag uint16, v ...uint16) Entry {
	data := make([]byte, 2*len(v))
	for i, x := range v {
		b.Order.PutUint16(data[2*i:], x)
	}
	return Entry{Tag: tag, Type: Short, Count: uint32(len(v)), Data: data}
}

func (b Builder) Longs(tag uint16, v ...uint32) Entry {
	data := make([]byte, 4*len(v))
	for i, x := range v {
		b.Order.PutUint32(data[4*i:], x)
	}
	return Entry{Tag: tag, Type: Long, Count: uint32(len(v)), Data: data}
}

// Rationals encodes numerator, denominator pairs.
func (b Builder) Rationals(tag uint16, v ...uint32) Entry {
	e := b.Longs(tag, v...)
	e.Type = Rational
	e.Count = uint32(len(v) / 2)
	return e
}

// Pointer links to a sub directory.
func Pointer(tag uint16, d *Dir) Entry {
	return Entry{Tag: tag, Type: Long, Count: 1, Sub: d}
}

// Raw is an entry whose value slot holds at, whatever its size.
func Raw(tag, typ uint16, count, at uint32) Entry {
	return Entry{Tag: tag, Type: typ, Count: count, At: at}
}

// TIFF lays out ifd0 and every directory reachable from it. Next-directory
// offsets are written as 4 bytes.
func (b Builder) TIFF(ifd0 *Dir) []byte {
	var dirs []*Dir
	seen := make(map[*Dir]bool)
	var visit func(d *Dir)
	visit = func(d *Dir) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		dirs = append(dirs, d)
		for _, e := range d.Entries {
			visit(e.Sub)
		}
		visit(d.Next)
	}
	visit(ifd0)

	offsets := make(map[*Dir]uint32)
	off := uint32(8)
	for _, d := range dirs {
		offsets[d] = off
		off += 2 + 12*uint32(len(d.Entries)) + 4
	}
	dataAt := make(map[*Entry]uint32)
	for _, d := range dirs {
		for i := range d.Entries {
			e := &d.Entries[i]
			if e.Sub == nil && len(e.Data) > 4 {
				dataAt[e] = off
				off += uint32(len(e.Data) + len(e.Data)%2)
			}
		}
	}

	out := make([]byte, off)
	copy(out, b.marker())
	b.Order.PutUint16(out[2:], 42)
	b.Order.PutUint32(out[4:], offsets[ifd0])
	for _, d := range dirs {
		pos := offsets[d]
		b.Order.PutUint16(out[pos:], uint16(len(d.Entries)))
		pos += 2
		for i := range d.Entries {
			e := &d.Entries[i]
			b.putEntry(out[pos:pos+12], e, func() uint32 {
				if e.Sub != nil {
					return offsets[e.Sub]
				}
				at := dataAt[e]
				copy(out[at:], e.Data)
				return at
			})
			pos += 12
		}
		if d.Next != nil {
			b.Order.PutUint32(out[pos:], offsets[d.Next])
		}
	}
	return out
}

func (b Builder) putEntry(rec []byte, e *Entry, place func() uint32) {
	b.Order.PutUint16(rec[0:], e.Tag)
	b.Order.PutUint16(rec[2:], e.Type)
	b.Order.PutUint32(rec[4:], e.Count)
	switch {
	case e.Sub != nil || len(e.Data) > 4:
		b.Order.PutUint32(rec[8:], place())
	case e.Data != nil:
		copy(rec[8:12], e.Data)
	default:
		b.Order.PutUint32(rec[8:], e.At)
	}
}

// MakerNote lays out a maker-note blob: the preamble, a two byte entry count
// (low byte first), the entries and their out-of-line data. Offsets are
// relative to the start of the blob.
func (b Builder) MakerNote(preamble []byte, entries ...Entry) []byte {
	off := uint32(len(preamble) + 2 + 12*len(entries))
	var data []byte
	out := make([]byte, off)
	copy(out, preamble)
	out[len(preamble)] = byte(len(entries))
	pos := len(preamble) + 2
	for i := range entries {
		e := &entries[i]
		b.putEntry(out[pos:pos+12], e, func() uint32 {
			at := off + uint32(len(data))
			data = append(data, e.Data...)
			return at
		})
		pos += 12
	}
	return append(out, data...)
}

// APP1 wraps an Exif TIFF container in an APP1 segment.
func APP1(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

// APP0 is a JFIF segment.
func APP0() []byte {
	return []byte{
		0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	}
}

// JPEG returns a decodable JPEG file carrying tiff in its APP1 segment.
func JPEG(tiff []byte) []byte {
	return Segments(APP1(tiff))
}

// Segments returns a JPEG file with segs inserted after the start-of-image
// marker.
func Segments(segs ...[]byte) []byte {
	out := []byte{0xFF, 0xD8}
	for _, s := range segs {
		out = append(out, s...)
	}
	return append(out, body()...)
}

// body is an encoded 8x8 image without its start-of-image marker.
func body() []byte {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 4)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic(err)
	}
	return buf.Bytes()[2:]
}

// FromImage encodes img as a TIFF file and embeds that file as the Exif
// container of a JPEG. The result carries the encoder's own IFD0 (width,
// length, resolution, strip layout) with the pixel data sitting between the
// header and the directory.
func FromImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return JPEG(buf.Bytes()), nil
}

// Checker is a small opaque image for FromImage.
func Checker(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255 * ((x + y) % 2))
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 0xFF})
		}
	}
	return img
}
