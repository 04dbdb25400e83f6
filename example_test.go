package imgexif_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/sebnyberg/imgexif"
	"github.com/sebnyberg/imgexif/internal/exiftest"
)

func ExampleRead() {
	jpg := exiftest.Canon(binary.LittleEndian).JPEG()
	rec, err := imgexif.Read(bytes.NewReader(jpg))
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(rec.Maker, "/", rec.Model)
	fmt.Println(rec.DateTime)
	fmt.Printf("1/%.0fs f/%.1f %dx%d\n", 1/rec.ExposureTime, rec.FNumber, rec.ImageWidth, rec.ImageHeight)
	fmt.Println(rec.GPS.LatitudeRef, rec.GPS.LatitudeDMS, rec.GPS.LongitudeRef, rec.GPS.LongitudeDMS)
	// Output:
	// Canon / Canon PowerShot SX130 IS
	// 2015:05:02 19:26:50
	// 1/800s f/3.5 640x480
	// N 35:39:31.170 E 139:44:43.400
}

func ExampleReadDirs() {
	jpg := exiftest.Canon(binary.BigEndian).JPEG()
	dirs, err := imgexif.ReadDirs(bytes.NewReader(jpg), imgexif.WithNextOffsetSize(4))
	if err != nil {
		log.Fatalln(err)
	}
	for _, f := range dirs.Exif.Fields()[:3] {
		fmt.Println(f.Key(), f.Name(), f.Type, f.Count)
	}
	// Output:
	// 0x829a ExposureTime RATIONAL 1
	// 0x829d FNumber RATIONAL 1
	// 0x8827 ISOSpeedRatings SHORT 1
}

func ExampleDecodeMakerNote() {
	jpg := exiftest.Canon(binary.LittleEndian).JPEG()
	rec, _ := imgexif.Read(bytes.NewReader(jpg))
	note, err := imgexif.DecodeMakerNote(rec)
	for _, f := range note.Fields() {
		fmt.Println(f.Key(), f.Type, f.Size)
	}
	fmt.Println(err)
	// Output:
	// 0x0001 SHORT 4
	// 0x0006 ASCII 28
	// tiff: corrupt data at offset 38: maker note tag 0x0007: data [16384, 16416) exceeds note length 78
}
