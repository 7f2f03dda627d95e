package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()
	assert.Equal(t, "letter", opts.PageSize)
	assert.False(t, opts.Landscape)
	assert.Equal(t, 0.5, opts.MarginInches)

	w, h := opts.paperSize()
	assert.Equal(t, 8.5, w)
	assert.Equal(t, 11.0, h)
}

func TestPaperSize(t *testing.T) {
	w, h := PDFOptions{PageSize: "legal", Landscape: true}.paperSize()
	assert.Equal(t, 14.0, w)
	assert.Equal(t, 8.5, h)

	w, h = PDFOptions{PageSize: "A4"}.paperSize()
	assert.Equal(t, 8.27, w)
	assert.Equal(t, 11.69, h)
}

func TestChromePDFRendererSmoke(t *testing.T) {
	chromePath := os.Getenv("CHROME_PATH")
	if chromePath == "" {
		t.Skip("Skipping PDF generation test: CHROME_PATH not set")
	}

	pdf, err := NewChromePDFRenderer(chromePath).RenderPDF(context.Background(), "<h1>Rate Confirmation</h1>", DefaultPDFOptions())
	require.NoError(t, err)
	assert.Contains(t, string(pdf[:5]), "%PDF-")
}
