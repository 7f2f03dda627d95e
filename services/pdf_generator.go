package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions controls paper and margins
type PDFOptions struct {
	Landscape    bool
	PageSize     string  // letter, legal, A4
	MarginInches float64 // applied to all four sides
}

// DefaultPDFOptions returns letter portrait with half-inch margins, the rate confirmation layout
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:     "letter",
		MarginInches: 0.5,
	}
}

// paperSize returns width and height in inches
func (o PDFOptions) paperSize() (float64, float64) {
	var w, h float64
	switch o.PageSize {
	case "legal":
		w, h = 8.5, 14.0
	case "A4":
		w, h = 8.27, 11.69
	default:
		w, h = 8.5, 11.0
	}
	if o.Landscape {
		w, h = h, w
	}
	return w, h
}

// PDFRenderer turns an HTML document into PDF bytes
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error)
}

// ChromePDFRenderer prints HTML with headless Chrome
type ChromePDFRenderer struct {
	ChromePath string // Optional; headless-shell path in containers
	Timeout    time.Duration
}

// NewChromePDFRenderer returns a renderer using the given Chrome binary ("" for the default lookup)
func NewChromePDFRenderer(chromePath string) *ChromePDFRenderer {
	return &ChromePDFRenderer{ChromePath: chromePath, Timeout: 30 * time.Second}
}

// RenderPDF implements PDFRenderer
func (r *ChromePDFRenderer) RenderPDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if r.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.ChromePath))
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	width, height := opts.paperSize()
	margin := opts.MarginInches

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdf, nil
}
