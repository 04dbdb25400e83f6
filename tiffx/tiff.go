package tiffx

// https://web.archive.org/web/20210108174645/https://www.adobe.io/content/dam/udp/en/open/standards/tiff/TIFF6.pdf
//
// Exif stores its metadata as a TIFF container: an 8 byte header followed by
// offset-linked Image File Directories (IFDs). This package decodes the header
// and the directories, but never image strips or tiles.

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderLen is the size of a TIFF header in bytes.
const HeaderLen = 8

// Order is the byte order of a TIFF container.
type Order int

const (
	BigEndian Order = iota
	LittleEndian
)

// DefaultOrder is assumed when the byte order marker is not recognized.
const DefaultOrder = LittleEndian

func (o Order) String() string {
	if o == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// ByteOrder returns the encoding/binary equivalent of o.
func (o Order) ByteOrder() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Uint decodes b as an unsigned integer. b may have any length up to 8.
// Big-endian weighs byte i by 256^(n-1-i), little-endian by 256^i.
func (o Order) Uint(b []byte) uint64 {
	var v uint64
	if o == BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Uint16 decodes the first two bytes of b.
func (o Order) Uint16(b []byte) uint16 { return uint16(o.Uint(b[:2])) }

// Uint32 decodes the first four bytes of b.
func (o Order) Uint32(b []byte) uint32 { return uint32(o.Uint(b[:4])) }

// UnknownOrderError reports a byte order marker that is neither "II" nor "MM".
// Decoding continues with DefaultOrder.
type UnknownOrderError struct {
	Marker [2]byte
}

func (e *UnknownOrderError) Error() string {
	return fmt.Sprintf("tiff: unknown byte order marker %#02x%02x, assuming %v",
		e.Marker[0], e.Marker[1], DefaultOrder)
}

// ParseOrder maps a byte order marker to an Order.
func ParseOrder(marker [2]byte) (Order, error) {
	switch string(marker[:]) {
	case "MM":
		return BigEndian, nil
	case "II":
		return LittleEndian, nil
	}
	return DefaultOrder, &UnknownOrderError{Marker: marker}
}

type Header struct {
	Order Order
	// IFD0 is the offset of the first directory relative to the header start.
	IFD0 uint32
}

// DecodeHeader reads a TIFF header from r. The 0x002A magic number is not
// checked. An unrecognized byte order marker returns a usable header together
// with an *UnknownOrderError.
func DecodeHeader(r io.Reader) (res Header, err error) {
	var b [HeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Header{}, err
	}
	res.Order, err = ParseOrder([2]byte{b[0], b[1]})
	res.IFD0 = res.Order.Uint32(b[4:8])
	return res, err
}
