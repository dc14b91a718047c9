// Package format sniffs the kind of artifact handed to the pipeline.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a recognized input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// XLSX indicates an Excel (.xlsx) workbook.
	XLSX
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// BMP indicates a Windows bitmap.
	BMP
	// TIFF indicates a TIFF image.
	TIFF
	// WebP indicates a WebP image.
	WebP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case XLSX:
		return "XLSX"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case BMP:
		return "BMP"
	case TIFF:
		return "TIFF"
	case WebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case XLSX:
		return ".xlsx"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	case WebP:
		return ".webp"
	default:
		return ""
	}
}

// IsImage reports whether f is a raster image format.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, GIF, BMP, TIFF, WebP:
		return true
	}
	return false
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".xlsx", ".xlsm":
		return XLSX
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".gif":
		return GIF
	case ".bmp":
		return BMP
	case ".tif", ".tiff":
		return TIFF
	case ".webp":
		return WebP
	default:
		return Unknown
	}
}

var (
	magicPDF      = []byte("%PDF")
	magicZIP      = []byte{0x50, 0x4B, 0x03, 0x04}
	magicPNG      = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	magicJPEG     = []byte{0xFF, 0xD8, 0xFF}
	magicGIF87    = []byte("GIF87a")
	magicGIF89    = []byte("GIF89a")
	magicBMP      = []byte("BM")
	magicTIFFLE   = []byte{'I', 'I', 0x2A, 0x00}
	magicTIFFBE   = []byte{'M', 'M', 0x00, 0x2A}
	magicRIFF     = []byte("RIFF")
	magicWebPTag  = []byte("WEBP")
	pdfHeaderScan = 1024
)

// DetectFromMagic checks magic bytes to determine format. ZIP archives are
// reported as Unknown; use DetectBytes to look inside them.
func DetectFromMagic(data []byte) Format {
	switch {
	case len(data) < 2:
		return Unknown
	case bytes.HasPrefix(data, magicPNG):
		return PNG
	case bytes.HasPrefix(data, magicJPEG):
		return JPEG
	case bytes.HasPrefix(data, magicGIF87), bytes.HasPrefix(data, magicGIF89):
		return GIF
	case bytes.HasPrefix(data, magicTIFFLE), bytes.HasPrefix(data, magicTIFFBE):
		return TIFF
	case len(data) >= 12 && bytes.HasPrefix(data, magicRIFF) && bytes.Equal(data[8:12], magicWebPTag):
		return WebP
	case bytes.HasPrefix(data, magicBMP):
		return BMP
	}

	// Some producers write junk before the PDF header.
	head := data[:min(len(data), pdfHeaderScan)]
	if bytes.Contains(head, magicPDF) {
		return PDF
	}
	return Unknown
}

// DetectBytes determines the format of data held in memory.
func DetectBytes(data []byte) (Format, error) {
	return DetectFromReader(bytes.NewReader(data), int64(len(data)))
}

// DetectFromReader inspects the content to determine format, opening ZIP
// archives to tell workbooks apart from other OOXML packages.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, pdfHeaderScan)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if bytes.HasPrefix(magic, magicZIP) {
		return detectZIPFormat(r, size)
	}
	return DetectFromMagic(magic), nil
}

// detectZIPFormat reports XLSX when the archive carries a spreadsheet part.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if f.Name == "xl/workbook.xml" || strings.HasPrefix(f.Name, "xl/worksheets/") {
			return XLSX, nil
		}
	}
	return Unknown, nil
}
