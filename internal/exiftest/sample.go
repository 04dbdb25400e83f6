package exiftest

import "encoding/binary"

// Values carried by the Canon sample.
const (
	CanonMake     = "Canon"
	CanonModel    = "Canon PowerShot SX130 IS"
	CanonDateTime = "2015:05:02 19:26:50"
	CanonVersion  = "0230"
	CanonWidth    = 640
	CanonHeight   = 480
)

// Sample is a camera-like directory tree: IFD0 chained to a thumbnail IFD1,
// with Exif and GPS sub directories.
type Sample struct {
	B    Builder
	IFD0 *Dir
	IFD1 *Dir
	Exif *Dir
	GPS  *Dir
}

// CanonNote is the maker note of the Canon sample: a 12 byte preamble and
// three entries, the last of which points past the end of the blob.
func (b Builder) CanonNote() []byte {
	return b.MakerNote([]byte("CanonNote\x00\x00\x00"),
		b.Shorts(0x0001, 7, 3),
		b.ASCII(0x0006, "IMG:PowerShot SX130 IS JPEG"),
		Raw(0x0007, Long, 8, 0x4000),
	)
}

// Canon returns a sample with the values of a PowerShot SX130 IS photo.
func Canon(order binary.ByteOrder) *Sample {
	b := Builder{Order: order}
	s := &Sample{B: b}
	s.Exif = &Dir{Entries: []Entry{
		b.Rationals(0x829a, 1, 800),
		b.Rationals(0x829d, 35, 10),
		b.Shorts(0x8827, 400),
		b.Undefined(0x9000, []byte(CanonVersion)),
		b.ASCII(0x9003, CanonDateTime),
		b.Undefined(0x927c, b.CanonNote()),
		b.Shorts(0xa002, CanonWidth),
		b.Shorts(0xa003, CanonHeight),
	}}
	s.GPS = &Dir{Entries: []Entry{
		b.Bytes(0x0000, 2, 3, 0, 0),
		b.ASCII(0x0001, "N"),
		b.Rationals(0x0002, 35, 1, 39, 1, 3117, 100),
		b.ASCII(0x0003, "E"),
		b.Rationals(0x0004, 139, 1, 44, 1, 434, 10),
		b.ASCII(0x0010, "T"),
		b.Rationals(0x0011, 12345, 100),
	}}
	s.IFD1 = &Dir{Entries: []Entry{
		b.Shorts(0x0103, 6),
		b.Rationals(0x011a, 180, 1),
		b.Rationals(0x011b, 180, 1),
		b.Shorts(0x0128, 2),
		b.Longs(0x0201, 5108),
		b.Longs(0x0202, 4243),
	}}
	s.IFD0 = &Dir{
		Entries: []Entry{
			b.ASCII(0x010f, CanonMake),
			b.ASCII(0x0110, CanonModel),
			b.Shorts(0x0112, 1),
			b.Rationals(0x011a, 180, 1),
			b.Rationals(0x011b, 180, 1),
			b.Shorts(0x0128, 2),
			b.ASCII(0x0132, CanonDateTime),
			b.Shorts(0x0213, 2),
			Pointer(0x8769, s.Exif),
			Pointer(0x8825, s.GPS),
		},
		Next: s.IFD1,
	}
	return s
}

// TIFF returns the Exif container of s.
func (s *Sample) TIFF() []byte { return s.B.TIFF(s.IFD0) }

// JPEG returns a JPEG file carrying s.
func (s *Sample) JPEG() []byte { return JPEG(s.TIFF()) }
