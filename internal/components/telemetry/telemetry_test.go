package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("orders", rec)

	scoped.ReportBroken("loader.download", "boom")
	scoped.ReportWarning("loader.parse")
	scoped.ReportDebug("downloaded feed", 3)
	scoped.ReportCount("loader.rows", 12)

	require.Equal(t, []Report{
		{Kind: "broken", ID: "orders: loader.download", Params: []any{"boom"}},
		{Kind: "warning", ID: "orders: loader.parse", Params: nil},
		{Kind: "debug", ID: "orders: downloaded feed", Params: []any{3}},
		{Kind: "count", ID: "orders: loader.rows", Params: []any{int64(12)}},
	}, rec.Reports(""))

	require.Len(t, rec.Reports("broken"), 1)
}
