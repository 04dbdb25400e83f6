package mknotex

import (
	"encoding/binary"
	"testing"

	"github.com/sebnyberg/imgexif/internal/exiftest"
	"github.com/sebnyberg/imgexif/tiffx"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		bo    binary.ByteOrder
		order tiffx.Order
	}{
		{binary.BigEndian, tiffx.BigEndian},
		{binary.LittleEndian, tiffx.LittleEndian},
	} {
		t.Run(tc.order.String(), func(t *testing.T) {
			note := exiftest.Builder{Order: tc.bo}.CanonNote()
			dir, err := New(tc.order, WithLogger(zaptest.NewLogger(t))).Decode(note)

			// The third field points past the end of the note.
			errs := multierr.Errors(err)
			require.Len(t, errs, 1)
			var corrupt *tiffx.CorruptError
			require.ErrorAs(t, errs[0], &corrupt)
			require.Equal(t, int64(12+2+2*12), corrupt.Offset)
			_, ok := dir.Tag(0x0007)
			require.False(t, ok)

			require.Equal(t, 2, dir.Len())
			f, ok := dir.Tag(0x0001)
			require.True(t, ok)
			require.True(t, f.Inline())
			v, err := f.Uint(tc.order, 1)
			require.NoError(t, err)
			require.Equal(t, uint32(3), v)

			f, ok = dir.Field("0x0006")
			require.True(t, ok)
			require.False(t, f.Inline())
			require.Equal(t, "IMG:PowerShot SX130 IS JPEG", f.String())
			require.Equal(t, int64(12+2+3*12), f.Offset)
			require.Equal(t, f.Size, int64(len(f.Data)))
		})
	}
}

func TestCountRule(t *testing.T) {
	require.Equal(t, 3, NibbleCount([2]byte{3, 0}, tiffx.BigEndian))
	require.Equal(t, 0x12+0x01*16, NibbleCount([2]byte{0x12, 0x01}, tiffx.LittleEndian))
	require.Equal(t, 0x0112, OrderCount([2]byte{0x12, 0x01}, tiffx.LittleEndian))
	require.Equal(t, 0x1201, OrderCount([2]byte{0x12, 0x01}, tiffx.BigEndian))
	for n := 0; n < 256; n++ {
		b := [2]byte{byte(n), 0}
		require.Equal(t, OrderCount(b, tiffx.LittleEndian), NibbleCount(b, tiffx.LittleEndian))
	}
}

func TestDecodeOrderCount(t *testing.T) {
	// The builder writes the count low byte first, which a big-endian
	// OrderCount reads as 512 entries.
	b := exiftest.Builder{Order: binary.BigEndian}
	note := b.MakerNote(make([]byte, 12), b.Shorts(0x0001, 1), b.Shorts(0x0002, 2))

	dir, err := New(tiffx.BigEndian, WithCountRule(OrderCount)).Decode(note)
	require.Equal(t, 2, dir.Len())
	var corrupt *tiffx.CorruptError
	require.ErrorAs(t, err, &corrupt)
	require.Contains(t, corrupt.Reason, "after 2 of 512 entries")

	dir, err = New(tiffx.BigEndian).Decode(note)
	require.NoError(t, err)
	require.Equal(t, 2, dir.Len())
}

func TestDecodePreamble(t *testing.T) {
	b := exiftest.Builder{Order: binary.LittleEndian}
	note := b.MakerNote([]byte("Nikon\x00\x02\x10"), b.ASCII(0x0002, "ISO"), b.ASCII(0x0004, "FINE   "))

	dir, err := New(tiffx.LittleEndian, WithPreamble(8)).Decode(note)
	require.NoError(t, err)
	f, ok := dir.Tag(0x0004)
	require.True(t, ok)
	require.Equal(t, "FINE   ", f.String())
	f, ok = dir.Tag(0x0002)
	require.True(t, ok)
	require.True(t, f.Inline())
	require.Equal(t, "ISO", f.String())

	require.Panics(t, func() { New(tiffx.LittleEndian, WithPreamble(-1)) })
}

func TestDecodeCorrupt(t *testing.T) {
	b := exiftest.Builder{Order: binary.LittleEndian}

	_, err := New(tiffx.LittleEndian).Decode([]byte("short"))
	var corrupt *tiffx.CorruptError
	require.ErrorAs(t, err, &corrupt)

	// Unknown types are dropped like out of range data.
	note := b.MakerNote(make([]byte, 12),
		exiftest.Raw(0x0001, 13, 1, 0),
		b.Shorts(0x0002, 9),
		exiftest.Raw(0x0003, exiftest.Long, 0xffffffff, 0),
	)
	dir, err := New(tiffx.LittleEndian, WithLogger(zaptest.NewLogger(t))).Decode(note)
	require.Len(t, multierr.Errors(err), 2)
	require.Equal(t, 1, dir.Len())
	_, ok := dir.Tag(0x0002)
	require.True(t, ok)
}
