package runlog

import (
	"context"
	"database/sql"
	"robotorder/internal/components/chrono"
	"robotorder/internal/runlog/db"
	configlibsql "robotorder/lib/configutil/libsql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func openLog(t testing.TB, now time.Time) Log {
	database, err := configlibsql.Struct{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	log, err := New(context.Background(), database, chrono.FixedImpl{Time: now})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestLog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	now := time.UnixMilli(1_710_757_351_000)
	log := openLog(t, now)

	_, err := log.LatestRun(ctx)
	require.ErrorIs(t, err, sql.ErrNoRows)

	runID, err := log.StartRun(ctx)
	require.NoError(t, err)
	require.Len(t, runID, 8)

	run, err := log.LatestRun(ctx)
	require.NoError(t, err)
	require.Equal(t, Run{ID: runID, StartedAt: now, Status: db.RUN_STATUS_RUNNING}, run)

	outcomes := []OrderOutcome{
		{Index: 0, OrderNumber: "1", Outcome: "success", Attempts: 1, ReceiptID: "RSB-ROBO-ORDER-1", RecordedAt: now},
		{Index: 1, OrderNumber: "2", Outcome: "validation_failed", Attempts: 10, Error: "order rejected by form validation", RecordedAt: now},
	}
	for _, o := range outcomes {
		require.NoError(t, log.RecordOrder(ctx, runID, o))
	}

	require.NoError(t, log.FinishRun(ctx, runID, false))
	run, err = log.LatestRun(ctx)
	require.NoError(t, err)
	require.Equal(t, db.RUN_STATUS_COMPLETED, run.Status)
	require.Equal(t, now, run.FinishedAt)

	recorded, err := log.RunOrders(ctx, runID)
	require.NoError(t, err)
	if diff := cmp.Diff(outcomes, recorded); diff != "" {
		t.Fatalf("unexpected outcomes (-want +got):\n%s", diff)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	log := openLog(t, time.UnixMilli(0))
	require.Error(t, log.FinishRun(context.Background(), "missing", true))
}

func TestRecordDuplicateIndex(t *testing.T) {
	ctx := context.Background()
	log := openLog(t, time.UnixMilli(1000))

	runID, err := log.StartRun(ctx)
	require.NoError(t, err)
	require.NoError(t, log.RecordOrder(ctx, runID, OrderOutcome{Index: 0, OrderNumber: "1", Outcome: "success"}))
	require.Error(t, log.RecordOrder(ctx, runID, OrderOutcome{Index: 0, OrderNumber: "1", Outcome: "success"}))
}
