package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

// bodies of failed responses are cut off after this many bytes in reports
const maxReportedBody = 2048

type requestInfo struct {
	id    uint64
	start time.Time
}

type requestInfoKey struct{}

type restyHooks struct {
	tel     API
	counter *atomic.Uint64
}

// InstrumentResty reports the start, duration and outcome of every request made by `client`.
// Failed responses are reported as warnings together with the full exchange.
func InstrumentResty(client *resty.Client, tel API) {
	h := restyHooks{tel: tel, counter: &atomic.Uint64{}}
	client.OnBeforeRequest(h.before)
	client.OnAfterResponse(h.after)
	client.OnError(h.failed)
}

func (h restyHooks) before(_ *resty.Client, req *resty.Request) error {
	info := requestInfo{id: h.counter.Add(1), start: time.Now()}
	h.tel.ReportDebug(report_resty_request, info.id, req.Method, req.URL)
	req.SetContext(context.WithValue(req.Context(), requestInfoKey{}, info))
	return nil
}

func (h restyHooks) after(_ *resty.Client, res *resty.Response) error {
	info, _ := res.Request.Context().Value(requestInfoKey{}).(requestInfo)
	elapsed := time.Since(info.start)

	if res.IsError() {
		h.tel.ReportWarning(report_resty_response, info.id, elapsed.String(), describeExchange(res))
		return nil
	}
	h.tel.ReportDebug(report_resty_response, info.id, elapsed.String(), res.Status())
	return nil
}

func (h restyHooks) failed(req *resty.Request, err error) {
	var elapsed time.Duration
	info, ok := req.Context().Value(requestInfoKey{}).(requestInfo)
	if ok {
		elapsed = time.Since(info.start)
	}
	h.tel.ReportBroken(report_resty_response, err, req.Method, req.URL, elapsed)
}

func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
}

// describeExchange renders a request and its response in a readable form, the
// response url is the redirect target when there is one.
func describeExchange(res *resty.Response) string {
	out := &strings.Builder{}

	fmt.Fprintf(out, "> %s %s\n", res.Request.Method, res.Request.URL)
	if res.Request.RawRequest != nil {
		writeHeaders(out, res.Request.RawRequest.Header)
	}

	url := res.Request.URL
	if res.RawResponse != nil {
		if location, err := res.RawResponse.Location(); err == nil {
			url = location.String()
		}
	}
	fmt.Fprintf(out, "\n< %d %s\n", res.StatusCode(), url)
	writeHeaders(out, res.Header())

	body := res.Body()
	if len(body) > maxReportedBody {
		body = body[:maxReportedBody]
	}
	if len(body) > 0 {
		out.WriteString("\n")
		out.Write(body)
	}
	return out.String()
}
