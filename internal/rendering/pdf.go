package rendering

import (
	"context"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// DefaultPDFTimeout bounds one headless print.
const DefaultPDFTimeout = 60 * time.Second

// PDFRenderer prints the HTML rendering to PDF in headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type PDFRenderer struct {
	html    *HTMLRenderer
	timeout time.Duration
}

// NewPDFRenderer creates a PDF renderer. timeout <= 0 uses DefaultPDFTimeout.
func NewPDFRenderer(html *HTMLRenderer, timeout time.Duration) *PDFRenderer {
	if html == nil {
		html = NewHTMLRenderer()
	}
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &PDFRenderer{html: html, timeout: timeout}
}

// ChromeAvailable reports whether a Chrome or Chromium binary is on PATH.
func ChromeAvailable() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// Format implements Renderer.
func (r *PDFRenderer) Format() types.Format { return types.FormatPDF }

// Render implements Renderer.
func (r *PDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := r.html.Render(ctx, doc)
	if err != nil {
		return nil, err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "headless print failed", Cause: err}
	}
	return pdf, nil
}
