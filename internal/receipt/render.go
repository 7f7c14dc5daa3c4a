package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"robotorder/lib/htmlutil"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var markupPolicy = bluemonday.UGCPolicy()

// RenderPDF writes the receipt markup to a single page A4 pdf at path.
func RenderPDF(markup, path string) error {
	sanitized := markupPolicy.Sanitize(markup)
	doc, err := html.Parse(strings.NewReader(sanitized))
	if err != nil {
		return fmt.Errorf("parse receipt markup: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	translate := pdf.UnicodeTranslatorFromDescriptor("")
	writer := pdf.HTMLBasicNew()
	writer.Write(6, htmlutil.BasicMarkup(doc, translate))

	err = os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}
