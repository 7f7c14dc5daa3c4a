package receipt

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"robotorder/internal/browser/browsertest"
	"robotorder/internal/components/telemetry"
	"testing"

	"github.com/stretchr/testify/require"
)

const receiptMarkup = `
<h3>Receipt</h3>
<div>2024-03-18T10:22:31.000Z</div>
<p class="badge badge-success">RSB-ROBO-ORDER-K3PQ9T1</p>
<p>Main St 1</p>
<div id="parts" class="alert alert-light" role="alert">
	<div>Head: 2</div>
	<div>Body: B03</div>
	<div>Legs: 4</div>
</div>
<p>Thank you for your order! We will ship your robot to you as soon as our warehouse robots gather the parts you ordered! You will receive your robot in no time!</p>
`

var imageObject = regexp.MustCompile(`/Subtype\s*/Image`)

func TestReceiptID(t *testing.T) {
	require.Equal(t, "RSB-ROBO-ORDER-K3PQ9T1", ReceiptID(receiptMarkup))
	require.Equal(t, "", ReceiptID("<h3>Receipt</h3>"))
	require.Equal(t, "RSB-ROBO-ORDER-7", ReceiptID(`<p class="badge badge-success">
		<span>RSB-ROBO-</span>ORDER-7</p><p class="badge badge-success">RSB-ROBO-ORDER-8</p>`))
}

func TestRenderPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts", "1.pdf")
	err := RenderPDF(receiptMarkup, path)
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(contents, []byte("%PDF-")))
	require.False(t, imageObject.Match(contents))
}

func TestCapture(t *testing.T) {
	dir := t.TempDir()
	receipts := filepath.Join(dir, "output", "receipts")
	screenshots := filepath.Join(dir, "output", "screenshots")

	page := browsertest.New()
	page.HTML[SelectorReceipt] = receiptMarkup

	capturer := NewCapturer(receipts, screenshots, telemetry.SlogAPI{})
	artifacts, err := capturer.Capture(context.Background(), page, "1")
	require.NoError(t, err)
	require.Equal(t, Artifacts{
		Receipt:    filepath.Join(receipts, "1.pdf"),
		Screenshot: filepath.Join(screenshots, "1.png"),
		ReceiptID:  "RSB-ROBO-ORDER-K3PQ9T1",
	}, artifacts)

	f, err := os.Open(artifacts.Screenshot)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, browsertest.Robot().Bounds(), img.Bounds())

	contents, err := os.ReadFile(artifacts.Receipt)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(contents, []byte("%PDF-")))
	require.True(t, imageObject.Match(contents), "receipt should contain the embedded screenshot")

	_, err = os.Stat(artifacts.Receipt + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestCaptureMissingReceipt(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.New()
	rec := &telemetry.Recorder{}

	capturer := NewCapturer(filepath.Join(dir, "receipts"), filepath.Join(dir, "screenshots"), rec)
	_, err := capturer.Capture(context.Background(), page, "1")
	require.Error(t, err)
	require.Len(t, rec.Reports("broken"), 1)
	require.Empty(t, page.Actions("screenshot"))
}

func TestCaptureMissingPreview(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.New()
	page.HTML[SelectorReceipt] = receiptMarkup
	page.Missing[SelectorRobotPreview] = true

	capturer := NewCapturer(filepath.Join(dir, "receipts"), filepath.Join(dir, "screenshots"), telemetry.SlogAPI{})
	_, err := capturer.Capture(context.Background(), page, "7")
	require.Error(t, err)

	// the rendered receipt stays behind, a failed capture aborts the run without cleanup
	_, err = os.Stat(capturer.ReceiptPath("7"))
	require.NoError(t, err)
}
