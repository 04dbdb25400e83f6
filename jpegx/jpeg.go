package jpegx

// A JPEG file is a sequence of marker segments. Exif metadata lives in an APP1
// segment directly after the start-of-image marker:
//
//	FFD8                SOI
//	FFE1 LLLL           APP1 marker and segment length
//	45 78 69 66 00 00   "Exif\0\0"
//	4D4D|4949 002A ...  TIFF header, the base of every offset in the segment

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sebnyberg/imgexif/tiffx"
	"go.uber.org/zap"
)

const (
	markerSOI  = 0xFFD8
	markerAPP0 = 0xFFE0
	markerAPP1 = 0xFFE1
)

// ScanLimit is how far into the file the APP1 segment is searched for.
const ScanLimit = 128

var signature = []byte("Exif\x00\x00")

// ErrNotExif is returned when the file carries no Exif segment. A JFIF file
// (APP0 before any APP1) is not Exif.
var ErrNotExif = errors.New("jpeg: no exif segment")

// UnknownOrderError reports an unrecognized byte order marker in the TIFF
// header. It is not fatal.
type UnknownOrderError = tiffx.UnknownOrderError

type Header struct {
	// SOI is the position of the start-of-image marker, or -1.
	SOI int64
	// APP1 is the position of the APP1 marker.
	APP1 int64
	// Length is the APP1 segment length as stored, including its own two
	// bytes.
	Length uint16
	// Base is the position of the TIFF header. Offsets within the segment
	// are relative to Base.
	Base  int64
	Order tiffx.Order
	// IFD0 is the absolute position of the first directory.
	IFD0 int64
	// OrderErr is set when the byte order marker was not recognized and
	// Order is tiffx.DefaultOrder.
	OrderErr *UnknownOrderError
}

// Locate scans r for the Exif APP1 segment and decodes the TIFF header that
// starts it. log may be nil.
func Locate(r io.ReaderAt, log *zap.Logger) (Header, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := Header{SOI: -1}
	var b [8]byte
	var pos int64
	for {
		if err := readFull(r, b[:2], pos); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return Header{}, ErrNotExif
			}
			return Header{}, err
		}
		marker := uint16(b[0])<<8 | uint16(b[1])
		switch marker {
		case markerSOI:
			log.Debug("soi", zap.Int64("offset", pos))
			res.SOI = pos
			pos += 2
			continue
		case markerAPP1:
			log.Debug("app1", zap.Int64("offset", pos))
			res.APP1 = pos
			return decodeAPP1(r, res, log)
		}
		if marker == markerAPP0 || pos > ScanLimit {
			log.Debug("no exif segment",
				zap.Int64("offset", pos),
				zap.Bool("jfif", marker == markerAPP0),
			)
			return Header{}, ErrNotExif
		}
		pos++
	}
}

func decodeAPP1(r io.ReaderAt, res Header, log *zap.Logger) (Header, error) {
	pos := res.APP1 + 2
	var b [8]byte
	if err := readFull(r, b[:8], pos); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrNotExif
		}
		return Header{}, err
	}
	res.Length = uint16(b[0])<<8 | uint16(b[1])
	if !bytes.Equal(b[2:8], signature) {
		log.Debug("app1 without exif signature", zap.Binary("signature", b[2:8]))
		return Header{}, ErrNotExif
	}
	res.Base = pos + 8

	h, err := tiffx.DecodeHeader(io.NewSectionReader(r, res.Base, tiffx.HeaderLen))
	if err != nil {
		var orderErr *UnknownOrderError
		if !errors.As(err, &orderErr) {
			return Header{}, fmt.Errorf("decode tiff header err, %w", err)
		}
		log.Warn("unknown byte order, using default",
			zap.Binary("marker", orderErr.Marker[:]),
			zap.Stringer("order", h.Order),
		)
		res.OrderErr = orderErr
	}
	res.Order = h.Order
	res.IFD0 = res.Base + int64(h.IFD0)
	log.Debug("exif header",
		zap.Int64("base", res.Base),
		zap.Uint16("length", res.Length),
		zap.Stringer("order", res.Order),
		zap.Int64("ifd0", res.IFD0),
	)
	return res, nil
}

func readFull(r io.ReaderAt, b []byte, off int64) error {
	n, err := r.ReadAt(b, off)
	if n == len(b) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
