package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.Header().Set("content-type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(strings.Repeat("x", maxReportedBody+100)))
			return
		}
		w.Write([]byte("Order number,Head,Body,Legs,Address\n"))
	}))
	defer server.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().Get(server.URL + "/orders.csv")
	require.NoError(t, err)
	require.Len(t, rec.Reports("debug"), 2)
	require.Empty(t, rec.Reports("warning"))

	_, err = client.R().Get(server.URL + "/missing")
	require.NoError(t, err)
	warnings := rec.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, report_resty_response, warnings[0].ID)
	require.Equal(t, uint64(2), warnings[0].Params[0])

	exchange := warnings[0].Params[2].(string)
	require.Contains(t, exchange, "> GET "+server.URL+"/missing")
	require.Contains(t, exchange, "< 404")
	require.Contains(t, exchange, "Content-Type: text/plain")
	require.NotContains(t, exchange, strings.Repeat("x", maxReportedBody+1))
}

func TestInstrumentRestyUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().Get(url)
	require.Error(t, err)
	require.Len(t, rec.Reports("broken"), 1)
}
