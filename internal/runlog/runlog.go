package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"robotorder/internal/components/chrono"
	"robotorder/internal/runlog/db"
	"time"

	"github.com/mazen160/go-random"
)

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
}

type OrderOutcome struct {
	Index       int
	OrderNumber string
	Outcome     string
	Attempts    int
	ReceiptID   string
	Error       string
	RecordedAt  time.Time
}

// Log keeps a record of every run and the outcome of each order it processed.
type Log struct {
	db   *sql.DB
	qry  *db.Queries
	time chrono.API
}

// New creates the schema if it does not exist yet.
func New(ctx context.Context, database *sql.DB, time chrono.API) (Log, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Log{}, fmt.Errorf("create run log schema: %w", err)
	}
	return Log{
		db:   database,
		qry:  db.New(database),
		time: time,
	}, nil
}

func (l Log) Close() error {
	return l.db.Close()
}

// StartRun creates a new run with a random id.
func (l Log) StartRun(ctx context.Context) (string, error) {
	id, err := random.String(8)
	if err != nil {
		return "", err
	}
	err = l.qry.CreateRun(ctx, db.CreateRunParams{
		ID:        id,
		StartedAt: l.time.Now().UnixMilli(),
		Status:    db.RUN_STATUS_RUNNING,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (l Log) RecordOrder(ctx context.Context, runID string, outcome OrderOutcome) error {
	return l.qry.CreateOrderOutcome(ctx, db.OrderOutcome{
		RunID:       runID,
		Idx:         int64(outcome.Index),
		OrderNumber: outcome.OrderNumber,
		Outcome:     outcome.Outcome,
		Attempts:    int64(outcome.Attempts),
		ReceiptID:   outcome.ReceiptID,
		Error:       outcome.Error,
		RecordedAt:  l.time.Now().UnixMilli(),
	})
}

// FinishRun marks a run as completed or aborted.
func (l Log) FinishRun(ctx context.Context, runID string, aborted bool) error {
	status := db.RUN_STATUS_COMPLETED
	if aborted {
		status = db.RUN_STATUS_ABORTED
	}
	affected, err := l.qry.FinishRun(ctx, db.FinishRunParams{
		FinishedAt: l.time.Now().UnixMilli(),
		Status:     status,
		ID:         runID,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("unknown run %q", runID)
	}
	return nil
}

// LatestRun returns the most recently started run, sql.ErrNoRows is returned if there are none.
func (l Log) LatestRun(ctx context.Context) (Run, error) {
	row, err := l.qry.GetLatestRun(ctx)
	if err != nil {
		return Run{}, err
	}
	run := Run{
		ID:        row.ID,
		StartedAt: time.UnixMilli(row.StartedAt),
		Status:    row.Status,
	}
	if row.FinishedAt.Valid {
		run.FinishedAt = time.UnixMilli(row.FinishedAt.Int64)
	}
	return run, nil
}

func (l Log) RunOrders(ctx context.Context, runID string) ([]OrderOutcome, error) {
	rows, err := l.qry.GetRunOrders(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderOutcome, len(rows))
	for i, r := range rows {
		out[i] = OrderOutcome{
			Index:       int(r.Idx),
			OrderNumber: r.OrderNumber,
			Outcome:     r.Outcome,
			Attempts:    int(r.Attempts),
			ReceiptID:   r.ReceiptID,
			Error:       r.Error,
			RecordedAt:  time.UnixMilli(r.RecordedAt),
		}
	}
	return out, nil
}
