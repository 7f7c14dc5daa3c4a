package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Run struct {
	ID         string
	StartedAt  int64
	FinishedAt sql.NullInt64
	Status     string
}

type OrderOutcome struct {
	RunID       string
	Idx         int64
	OrderNumber string
	Outcome     string
	Attempts    int64
	ReceiptID   string
	Error       string
	RecordedAt  int64
}

const createRun = `insert into run (id, started_at, status) values (?, ?, ?)`

type CreateRunParams struct {
	ID        string
	StartedAt int64
	Status    string
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) error {
	_, err := q.db.ExecContext(ctx, createRun, arg.ID, arg.StartedAt, arg.Status)
	return err
}

const finishRun = `update run set finished_at = ?, status = ? where id = ?`

type FinishRunParams struct {
	FinishedAt int64
	Status     string
	ID         string
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, finishRun, arg.FinishedAt, arg.Status, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createOrderOutcome = `insert into order_outcome (
    run_id, idx, order_number, outcome, attempts, receipt_id, error, recorded_at
) values (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateOrderOutcome(ctx context.Context, arg OrderOutcome) error {
	_, err := q.db.ExecContext(
		ctx, createOrderOutcome,
		arg.RunID,
		arg.Idx,
		arg.OrderNumber,
		arg.Outcome,
		arg.Attempts,
		arg.ReceiptID,
		arg.Error,
		arg.RecordedAt,
	)
	return err
}

const getLatestRun = `select id, started_at, finished_at, status from run
order by started_at desc, rowid desc
limit 1`

func (q *Queries) GetLatestRun(ctx context.Context) (Run, error) {
	row := q.db.QueryRowContext(ctx, getLatestRun)
	var i Run
	err := row.Scan(&i.ID, &i.StartedAt, &i.FinishedAt, &i.Status)
	return i, err
}

const getRunOrders = `select run_id, idx, order_number, outcome, attempts, receipt_id, error, recorded_at
from order_outcome
where run_id = ?
order by idx asc`

func (q *Queries) GetRunOrders(ctx context.Context, runID string) ([]OrderOutcome, error) {
	rows, err := q.db.QueryContext(ctx, getRunOrders, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderOutcome
	for rows.Next() {
		var i OrderOutcome
		if err := rows.Scan(
			&i.RunID,
			&i.Idx,
			&i.OrderNumber,
			&i.Outcome,
			&i.Attempts,
			&i.ReceiptID,
			&i.Error,
			&i.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
