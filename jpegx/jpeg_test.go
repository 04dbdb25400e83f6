package jpegx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/sebnyberg/imgexif/internal/exiftest"
	"github.com/sebnyberg/imgexif/tiffx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocate(t *testing.T) {
	for _, tc := range []struct {
		bo    binary.ByteOrder
		order tiffx.Order
	}{
		{binary.BigEndian, tiffx.BigEndian},
		{binary.LittleEndian, tiffx.LittleEndian},
	} {
		t.Run(tc.order.String(), func(t *testing.T) {
			s := exiftest.Canon(tc.bo)
			tiff := s.TIFF()
			data := exiftest.JPEG(tiff)
			h, err := Locate(bytes.NewReader(data), zaptest.NewLogger(t))
			require.NoError(t, err)
			require.Equal(t, int64(0), h.SOI)
			require.Equal(t, int64(2), h.APP1)
			require.Equal(t, uint16(2+6+len(tiff)), h.Length)
			require.Equal(t, int64(12), h.Base)
			require.Equal(t, tc.order, h.Order)
			require.Equal(t, int64(12+8), h.IFD0)
			require.Nil(t, h.OrderErr)
		})
	}
}

func TestLocateAfterOtherSegments(t *testing.T) {
	b := exiftest.Builder{Order: binary.LittleEndian}
	tiff := b.TIFF(&exiftest.Dir{Entries: []exiftest.Entry{b.ASCII(0x010f, "Canon")}})
	// A comment segment before APP1 is skipped over byte by byte.
	com := []byte{0xFF, 0xFE, 0x00, 0x07, 'h', 'e', 'l', 'l', 'o'}
	data := exiftest.Segments(com, exiftest.APP1(tiff))
	h, err := Locate(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, int64(2+len(com)), h.APP1)
	require.Equal(t, h.APP1+10, h.Base)
}

func TestLocateNotExif(t *testing.T) {
	b := exiftest.Builder{Order: binary.BigEndian}
	tiff := b.TIFF(&exiftest.Dir{})

	var plain bytes.Buffer
	require.NoError(t, jpeg.Encode(&plain, image.NewGray(image.Rect(0, 0, 8, 8)), nil))

	badSig := exiftest.APP1(tiff)
	copy(badSig[4:], "Exix")

	far := make([]byte, 200)
	far[0], far[1] = 0xFF, 0xFE
	binary.BigEndian.PutUint16(far[2:], uint16(len(far)-2))

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"jfif", exiftest.Segments(exiftest.APP0(), exiftest.APP1(tiff))},
		{"no app1", plain.Bytes()},
		{"bad signature", exiftest.Segments(badSig)},
		{"app1 past scan limit", exiftest.Segments(far, exiftest.APP1(tiff))},
		{"empty", nil},
		{"truncated app1", []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Locate(bytes.NewReader(tc.data), zaptest.NewLogger(t))
			require.ErrorIs(t, err, ErrNotExif)
		})
	}
}

func TestLocateUnknownOrder(t *testing.T) {
	b := exiftest.Builder{Order: binary.LittleEndian}
	tiff := b.TIFF(&exiftest.Dir{Entries: []exiftest.Entry{b.ASCII(0x010f, "Canon")}})
	copy(tiff, "XX")
	h, err := Locate(bytes.NewReader(exiftest.JPEG(tiff)), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, h.OrderErr)
	require.Equal(t, [2]byte{'X', 'X'}, h.OrderErr.Marker)
	require.Equal(t, tiffx.DefaultOrder, h.Order)
	require.Equal(t, int64(12+8), h.IFD0)
}

type failingReader struct{}

func (failingReader) ReadAt(p []byte, off int64) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLocateReadError(t *testing.T) {
	_, err := Locate(failingReader{}, nil)
	require.EqualError(t, err, "disk on fire")
	require.False(t, errors.Is(err, ErrNotExif))
}

func TestLocateTruncatedHeader(t *testing.T) {
	seg := exiftest.APP1([]byte("MM\x00"))
	_, err := Locate(bytes.NewReader(exiftest.Segments(seg)[:2+len(seg)]), nil)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotExif))
}
