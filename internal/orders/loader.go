package orders

import (
	"context"
	"fmt"
	"os"
	"robotorder/internal/components/telemetry"
	libtelemetry "robotorder/lib/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_loader_download = "loader.download"
	report_loader_parse    = "loader.parse"
)

// Loader fetches the order feed and keeps a local copy of it.
type Loader struct {
	http *resty.Client
	tel  telemetry.API

	url  string
	path string
}

// NewLoader creates a loader that downloads `url` to `path`.
func NewLoader(url, path string, tel telemetry.API) Loader {
	tel = telemetry.NewScopedAPI("orders", tel)

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	telemetry.InstrumentResty(client, tel)
	libtelemetry.InstrumentResty(client, "robotorder.internal.orders")

	return Loader{
		http: client,
		tel:  tel,
		url:  url,
		path: path,
	}
}

// Download fetches the feed, overwriting any existing local copy.
func (l Loader) Download(ctx context.Context) error {
	res, err := l.http.R().
		SetContext(ctx).
		SetOutput(l.path).
		Get(l.url)
	if err != nil {
		l.tel.ReportBroken(report_loader_download, fmt.Errorf("fetch: %w", err), l.url)
		return fmt.Errorf("download order feed: %w", err)
	}
	if res.IsError() {
		// the error page was written where the feed should be
		os.Remove(l.path)
		err = fmt.Errorf("download order feed: unexpected status %s", res.Status())
		l.tel.ReportBroken(report_loader_download, err, l.url)
		return err
	}
	return nil
}

// Load downloads the feed and parses the local copy.
func (l Loader) Load(ctx context.Context) ([]Order, error) {
	err := l.Download(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		l.tel.ReportBroken(report_loader_parse, fmt.Errorf("open: %w", err), l.path)
		return nil, err
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		l.tel.ReportBroken(report_loader_parse, err, l.path)
		return nil, err
	}
	l.tel.ReportCount(report_loader_parse, int64(len(rows)))
	return rows, nil
}
