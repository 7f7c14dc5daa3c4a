package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"robotorder/internal/browser"
	"robotorder/internal/components/telemetry"
	"robotorder/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_capturer_capture = "capturer.capture"
)

const (
	SelectorReceipt      = "#receipt"
	SelectorRobotPreview = "#robot-preview-image"
	selectorReceiptID    = "p.badge-success"
)

// Artifacts are the files produced for a single order.
type Artifacts struct {
	Receipt    string
	Screenshot string
	// ReceiptID is the confirmation id printed on the receipt, it is empty if the receipt has none.
	ReceiptID string
}

type Capturer struct {
	receiptsDir    string
	screenshotsDir string
	tel            telemetry.API
}

func NewCapturer(receiptsDir, screenshotsDir string, tel telemetry.API) Capturer {
	return Capturer{
		receiptsDir:    receiptsDir,
		screenshotsDir: screenshotsDir,
		tel:            telemetry.NewScopedAPI("receipt", tel),
	}
}

func (c Capturer) ReceiptPath(orderNumber string) string {
	return filepath.Join(c.receiptsDir, orderNumber+".pdf")
}

func (c Capturer) ScreenshotPath(orderNumber string) string {
	return filepath.Join(c.screenshotsDir, orderNumber+".png")
}

// Capture saves the receipt currently shown on the page as a pdf, screenshots the
// ordered robot and embeds the screenshot into the pdf.
func (c Capturer) Capture(ctx context.Context, page browser.Page, orderNumber string) (Artifacts, error) {
	broken := func(err error) (Artifacts, error) {
		c.tel.ReportBroken(report_capturer_capture, err, orderNumber)
		return Artifacts{}, err
	}

	if err := ctx.Err(); err != nil {
		return Artifacts{}, err
	}

	out := Artifacts{
		Receipt:    c.ReceiptPath(orderNumber),
		Screenshot: c.ScreenshotPath(orderNumber),
	}

	markup, err := page.InnerHTML(SelectorReceipt)
	if err != nil {
		return broken(fmt.Errorf("read receipt: %w", err))
	}
	out.ReceiptID = ReceiptID(markup)

	err = RenderPDF(markup, out.Receipt)
	if err != nil {
		return broken(fmt.Errorf("render receipt: %w", err))
	}

	err = os.MkdirAll(c.screenshotsDir, 0777)
	if err != nil {
		return broken(err)
	}
	err = page.Screenshot(SelectorRobotPreview, out.Screenshot)
	if err != nil {
		return broken(fmt.Errorf("screenshot robot: %w", err))
	}

	err = EmbedImage(out.Receipt, out.Screenshot)
	if err != nil {
		return broken(err)
	}

	c.tel.ReportDebug("captured receipt", orderNumber, out.ReceiptID)
	return out, nil
}

// ReceiptID extracts the confirmation id from receipt markup.
func ReceiptID(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	badge := doc.Find(selectorReceiptID)
	if badge.Length() == 0 {
		return ""
	}
	return htmlutil.Normalize(htmlutil.GetText(badge.Get(0)))
}
