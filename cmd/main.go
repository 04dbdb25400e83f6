package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/sebnyberg/imgexif"
	"github.com/sebnyberg/imgexif/mknotex"
	"github.com/sebnyberg/imgexif/tiffx"
	"github.com/sebnyberg/imgexif/zstdx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	verbose := flag.Bool("v", false, "log decoding diagnostics to stderr")
	dirs := flag.Bool("dirs", false, "print every directory field")
	makerNote := flag.Bool("makernote", false, "decode and print the maker note")
	wide := flag.Bool("wide", false, "read 4 byte next-directory offsets")
	pack := flag.String("pack", "", "write a seekable zstd copy of the file to this path")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	name := flag.Arg(0)

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalln(err)
		}
		defer logger.Sync()
	}
	opts := []imgexif.Option{imgexif.WithLogger(logger)}
	if *wide {
		opts = append(opts, imgexif.WithNextOffsetSize(4))
	}

	if *pack != "" {
		if err := packFile(name, *pack); err != nil {
			log.Fatalln(err)
		}
	}

	rec, err := imgexif.ReadFile(name, opts...)
	var missing *imgexif.MissingTagError
	if err != nil && !errors.As(err, &missing) {
		log.Fatalln(err)
	}
	for _, err := range multierr.Errors(err) {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	printRecord(os.Stdout, rec)

	if *dirs && rec.Enabled {
		if err := printDirs(os.Stdout, name, opts); err != nil {
			log.Fatalln(err)
		}
	}
	if *makerNote && rec.MakerNote != nil {
		note, err := imgexif.DecodeMakerNote(rec, mknotex.WithLogger(logger))
		for _, err := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		fmt.Println("\nMakerNote")
		printDir(os.Stdout, note, rec.Order)
	}
}

func printRecord(w io.Writer, rec imgexif.Record) {
	if !rec.Enabled {
		fmt.Fprintln(w, "no exif data")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	row := func(k string, v any) { fmt.Fprintf(tw, "%s\t%v\n", k, v) }
	row("ByteOrder", rec.Order)
	row("Make", rec.Maker)
	row("Model", rec.Model)
	row("DateTime", rec.DateTime)
	row("ExifVersion", rec.ExifVersion)
	row("ExposureTime", rec.ExposureTime)
	row("FNumber", rec.FNumber)
	row("ImageWidth", rec.ImageWidth)
	row("ImageHeight", rec.ImageHeight)
	row("MakerNote", fmt.Sprintf("%d bytes", len(rec.MakerNote)))
	if g := rec.GPS; g != nil {
		row("GPSVersion", g.Version)
		row("GPSLatitude", fmt.Sprintf("%s %f (%s)", g.LatitudeRef, g.Latitude, g.LatitudeDMS))
		row("GPSLongitude", fmt.Sprintf("%s %f (%s)", g.LongitudeRef, g.Longitude, g.LongitudeDMS))
		if g.HasImageDirection {
			row("GPSImgDirection", g.ImageDirection)
		}
	}
}

func printDirs(w io.Writer, name string, opts []imgexif.Option) error {
	f, err := imgexif.OpenFile(name)
	if err != nil {
		return err
	}
	defer f.Close()
	dirs, err := imgexif.ReadDirs(f, opts...)
	if err != nil {
		return err
	}
	for _, d := range []struct {
		name string
		dir  *tiffx.Directory
	}{
		{"IFD0", dirs.IFD0},
		{"IFD1", dirs.IFD1},
		{"Exif", dirs.Exif},
		{"GPS", dirs.GPS},
	} {
		if d.dir == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s @ %d\n", d.name, d.dir.Offset)
		printDir(w, d.dir, dirs.Header.Order)
	}
	return nil
}

func printDir(w io.Writer, d *tiffx.Directory, o tiffx.Order) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, f := range d.Fields() {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n", f.Key(), f.Name(), f.Type, f.Count, value(f, o))
	}
}

func value(f *tiffx.Field, o tiffx.Order) string {
	switch f.Type {
	case tiffx.ASCII:
		return fmt.Sprintf("%q", f.String())
	case tiffx.Rational:
		r, err := f.Rational(o, 0)
		if err != nil {
			return err.Error()
		}
		return r.String()
	case tiffx.Byte, tiffx.Short, tiffx.Long:
		v, err := f.Uint(o, 0)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprint(v)
	}
	if len(f.Data) > 16 {
		return fmt.Sprintf("% x ...", f.Data[:16])
	}
	return fmt.Sprintf("% x", f.Data)
}

func packFile(from, to string) error {
	f, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open file %q err, %w", from, err)
	}
	defer f.Close()
	out, err := os.OpenFile(to, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open file %q err, %w", to, err)
	}
	if err := zstdx.Compress(out, f); err != nil {
		out.Close()
		return fmt.Errorf("compress %q err, %w", from, err)
	}
	return out.Close()
}
