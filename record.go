package imgexif

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sebnyberg/imgexif/mknotex"
	"github.com/sebnyberg/imgexif/tiffx"
	"go.uber.org/multierr"
)

// Record holds the commonly used Exif values of an image.
type Record struct {
	// Enabled is set when IFD0 could be read. Everything else is zero
	// otherwise.
	Enabled bool
	// Order is the byte order of the Exif segment.
	Order tiffx.Order

	Maker    string
	Model    string
	DateTime string

	// Values from the Exif directory. Zero when the file has none.
	ExifVersion  string
	ExposureTime float64
	FNumber      float64
	ImageWidth   uint32
	ImageHeight  uint32
	// MakerNote is the raw vendor note. See DecodeMakerNote.
	MakerNote []byte

	// GPS is nil when the file has no GPS directory.
	GPS *GPS
}

type GPS struct {
	// Version is the four version bytes joined by dots, e.g. "2.3.0.0".
	Version string

	// Latitude and Longitude are in decimal degrees. The DMS variants are
	// formatted as "D:M:S.sss".
	Latitude     float64
	LatitudeRef  string
	LatitudeDMS  string
	Longitude    float64
	LongitudeRef string
	LongitudeDMS string

	ImageDirection    float64
	HasImageDirection bool
}

// MissingTagError is reported for each required tag that a directory lacks.
type MissingTagError struct {
	Dir string
	Tag string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("exif: %s has no %s tag", e.Dir, e.Tag)
}

// Assemble converts parsed directories into a Record.
//
// Rationals with a zero denominator convert to NaN. Missing required tags do
// not stop assembly; the returned error combines one *MissingTagError per
// missing tag, and can be split with multierr.Errors.
func Assemble(d *Dirs) (Record, error) {
	if d == nil || d.IFD0 == nil {
		return Record{}, nil
	}
	a := assembler{order: d.Header.Order}
	rec := Record{Enabled: true, Order: d.Header.Order}

	ifd0 := section{"IFD0", d.IFD0}
	rec.Maker = a.ascii(ifd0, tiffx.TagMake, "Make")
	rec.Model = a.ascii(ifd0, tiffx.TagModel, "Model")
	rec.DateTime = a.ascii(ifd0, tiffx.TagDateTime, "DateTime")

	if d.Exif != nil {
		exif := section{"Exif IFD", d.Exif}
		rec.ExifVersion = a.ascii(exif, tiffx.TagExifVersion, "ExifVersion")
		rec.ExposureTime = a.rational(exif, tiffx.TagExposureTime, "ExposureTime")
		rec.FNumber = a.rational(exif, tiffx.TagFNumber, "FNumber")
		rec.ImageWidth = a.integer(exif, tiffx.TagExifImageWidth, "ExifImageWidth")
		rec.ImageHeight = a.integer(exif, tiffx.TagExifImageHeight, "ExifImageHeight")
		if f, ok := d.Exif.Tag(tiffx.TagMakerNote); ok {
			rec.MakerNote = append([]byte(nil), f.Data...)
		}
	}

	if d.GPS != nil {
		rec.GPS = a.gps(section{"GPS IFD", d.GPS})
	}
	return rec, a.errs
}

// assembler collects lookup failures while a record is filled in.
type assembler struct {
	order tiffx.Order
	errs  error
}

type section struct {
	name string
	dir  *tiffx.Directory
}

func (a *assembler) field(s section, code uint16, name string) (*tiffx.Field, bool) {
	f, ok := s.dir.Tag(code)
	if !ok {
		a.errs = multierr.Append(a.errs, &MissingTagError{Dir: s.name, Tag: name})
	}
	return f, ok
}

func (a *assembler) ascii(s section, code uint16, name string) string {
	f, ok := a.field(s, code, name)
	if !ok {
		return ""
	}
	return f.String()
}

func (a *assembler) integer(s section, code uint16, name string) uint32 {
	f, ok := a.field(s, code, name)
	if !ok {
		return 0
	}
	v, err := f.Uint(a.order, 0)
	if err != nil {
		a.errs = multierr.Append(a.errs, fmt.Errorf("%s %s err, %w", s.name, name, err))
	}
	return v
}

func (a *assembler) rats(s section, code uint16, name string, n int) []tiffx.Rat {
	f, ok := a.field(s, code, name)
	if !ok {
		return nil
	}
	res := make([]tiffx.Rat, n)
	for i := range res {
		r, err := f.Rational(a.order, i)
		if err != nil {
			a.errs = multierr.Append(a.errs, fmt.Errorf("%s %s err, %w", s.name, name, err))
			return nil
		}
		res[i] = r
	}
	return res
}

func (a *assembler) rational(s section, code uint16, name string) float64 {
	r := a.rats(s, code, name, 1)
	if r == nil {
		return 0
	}
	return r[0].Float()
}

func (a *assembler) gps(s section) *GPS {
	g := new(GPS)
	if f, ok := s.dir.Tag(tiffx.GPSVersionID); ok {
		b := f.Data
		if int64(len(b)) > f.Size {
			b = b[:f.Size]
		}
		g.Version = joinBytes(b)
	}
	g.LatitudeRef = ref(a.ascii(s, tiffx.GPSLatitudeRef, "GPSLatitudeRef"))
	if dms := a.rats(s, tiffx.GPSLatitude, "GPSLatitude", 3); dms != nil {
		g.Latitude = Degrees(dms[0], dms[1], dms[2])
		g.LatitudeDMS = DMS(dms[0], dms[1], dms[2])
	}
	g.LongitudeRef = ref(a.ascii(s, tiffx.GPSLongitudeRef, "GPSLongitudeRef"))
	if dms := a.rats(s, tiffx.GPSLongitude, "GPSLongitude", 3); dms != nil {
		g.Longitude = Degrees(dms[0], dms[1], dms[2])
		g.LongitudeDMS = DMS(dms[0], dms[1], dms[2])
	}
	if f, ok := s.dir.Tag(tiffx.GPSImgDirection); ok {
		r, err := f.Rational(a.order, 0)
		if err != nil {
			a.errs = multierr.Append(a.errs, fmt.Errorf("%s GPSImgDirection err, %w", s.name, err))
		} else {
			g.ImageDirection = r.Float()
			g.HasImageDirection = true
		}
	}
	return g
}

// ref keeps the hemisphere character of a reference tag.
func ref(s string) string {
	if len(s) > 1 {
		return s[:1]
	}
	return s
}

func joinBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ".")
}

// Degrees converts a degrees, minutes, seconds triple to decimal degrees.
func Degrees(d, m, s tiffx.Rat) float64 {
	return d.Float() + m.Float()/60 + s.Float()/3600
}

// DMS formats a degrees, minutes, seconds triple as "D:M:S.sss". D and M are
// the integer parts of the degree and minute rationals; the fraction of the
// minutes is carried into the seconds.
func DMS(d, m, s tiffx.Rat) string {
	minutes := m.Float()
	whole := math.Floor(minutes)
	sec := (minutes-whole)*60 + s.Float()
	return fmt.Sprintf("%.0f:%.0f:%3.3f", math.Floor(d.Float()), whole, sec)
}

// ErrNoMakerNote is returned by DecodeMakerNote for records without a maker
// note.
var ErrNoMakerNote = errors.New("exif: no maker note")

// DecodeMakerNote parses the maker note of rec in the record's byte order.
// See mknotex.Decoder.Decode for the partial results it returns.
func DecodeMakerNote(rec Record, opts ...mknotex.Option) (*tiffx.Directory, error) {
	if len(rec.MakerNote) == 0 {
		return nil, ErrNoMakerNote
	}
	return mknotex.New(rec.Order, opts...).Decode(rec.MakerNote)
}
