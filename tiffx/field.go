package tiffx

import (
	"fmt"
	"math"
	"strings"
)

// Type is a TIFF field data type.
type Type uint16

const (
	Byte      Type = 1
	ASCII     Type = 2
	Short     Type = 3
	Long      Type = 4
	Rational  Type = 5
	SByte     Type = 6
	Undefined Type = 7
	SShort    Type = 8
	SLong     Type = 9
	SRational Type = 10
	Float     Type = 11
	DFloat    Type = 12
)

var typeNames = [...]string{"", "BYTE", "ASCII", "SHORT", "LONG", "RATIONAL",
	"SBYTE", "UNDEFINED", "SSHORT", "SLONG", "SRATIONAL", "FLOAT", "DFLOAT"}

var typeSizes = [...]int64{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Valid reports whether t is one of the twelve known types.
func (t Type) Valid() bool { return t >= Byte && t <= DFloat }

// Size returns the size in bytes of a single value of type t, or 0 for an
// unknown type.
func (t Type) Size() int64 {
	if !t.Valid() {
		return 0
	}
	return typeSizes[t]
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint16(t))
	}
	return typeNames[t]
}

// Field is a single 12 byte IFD record together with its payload.
//
// When Size <= 4 the payload lives in the record itself: Data holds the four
// slot bytes and Value their decoded form. Otherwise Value is the offset found
// in the slot and Data holds Size bytes read from Offset.
type Field struct {
	Tag   uint16
	Type  Type
	Count uint32
	// Size is Count times the size of Type.
	Size  int64
	Value uint32
	Data  []byte
	// Offset is the position Data was read from: absolute in the file for
	// directories, relative to the blob for maker notes. Zero when inline.
	Offset int64
}

// Inline reports whether the payload was stored in the record itself.
func (f *Field) Inline() bool { return f.Size <= 4 }

// Key returns the directory key of f.
func (f *Field) Key() string { return Key(f.Tag) }

// Name returns the dictionary name of f's tag.
func (f *Field) Name() string { return TagName(f.Tag) }

// String interprets the payload as characters, dropping NUL bytes.
func (f *Field) String() string {
	return strings.ReplaceAll(string(f.Data), "\x00", "")
}

// Uint decodes the i-th integer value of a BYTE, SHORT or LONG field (and
// their signed and undefined variants, as raw bits).
func (f *Field) Uint(o Order, i int) (uint32, error) {
	n := f.Type.Size()
	switch n {
	case 1, 2, 4:
	default:
		return 0, fmt.Errorf("tiff: tag %v is %v, not an integer", f.Key(), f.Type)
	}
	start := int64(i) * n
	if i < 0 || start+n > int64(len(f.Data)) {
		return 0, fmt.Errorf("tiff: tag %v has no value %d", f.Key(), i)
	}
	return uint32(o.Uint(f.Data[start : start+n])), nil
}

// Rational decodes the i-th rational of f: numerator at offset 8i and
// denominator at 8i+4, each a 4 byte unsigned integer.
func (f *Field) Rational(o Order, i int) (Rat, error) {
	start := int64(i) * 8
	if i < 0 || start+8 > int64(len(f.Data)) {
		return Rat{}, fmt.Errorf("tiff: tag %v has no rational %d", f.Key(), i)
	}
	b := f.Data[start : start+8]
	return Rat{Num: o.Uint32(b[0:4]), Den: o.Uint32(b[4:8])}, nil
}

// Rat is an unsigned TIFF rational.
type Rat struct {
	Num, Den uint32
}

// Float returns Num/Den. A zero denominator yields NaN.
func (r Rat) Float() float64 {
	if r.Den == 0 {
		return math.NaN()
	}
	return float64(r.Num) / float64(r.Den)
}

// Floor returns the integer part of Num/Den. A zero denominator yields 0.
func (r Rat) Floor() uint32 {
	if r.Den == 0 {
		return 0
	}
	return r.Num / r.Den
}

func (r Rat) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }
