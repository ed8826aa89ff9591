// Package pdfutil renders PDF receipts to images so they can enter the
// OCR pipeline like any photo upload.
package pdfutil

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// IsPDF reports whether a filename looks like a PDF upload.
func IsPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// FirstPageImage renders the first page of a PDF to JPEG bytes.
// Receipts are single-page documents; later pages are ignored.
func FirstPageImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF contains no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode page to JPEG: %w", err)
	}

	return buf.Bytes(), nil
}
