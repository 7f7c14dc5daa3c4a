package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"robotorder/internal/archive"
	"robotorder/internal/browser"
	"robotorder/internal/cleanup"
	"robotorder/internal/components/assert"
	"robotorder/internal/components/telemetry"
	"robotorder/internal/orders"
	"robotorder/internal/receipt"
	"robotorder/internal/runlog"
	"robotorder/internal/submitter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_pipeline_run   = "pipeline.run"
	report_pipeline_order = "pipeline.order"
)

var tracer = otel.Tracer("robotorder.internal.pipeline")

// Paths is the layout of a run's output directory.
type Paths struct {
	Output string
}

func (p Paths) Receipts() string {
	return filepath.Join(p.Output, "receipts")
}

func (p Paths) Screenshots() string {
	return filepath.Join(p.Output, "screenshots")
}

func (p Paths) Archive() string {
	return filepath.Join(p.Output, "receipts.zip")
}

// Feed provides the orders of a run.
type Feed interface {
	Load(ctx context.Context) ([]orders.Order, error)
}

// Recorder keeps the outcome of a run.
type Recorder interface {
	StartRun(ctx context.Context) (string, error)
	RecordOrder(ctx context.Context, runID string, outcome runlog.OrderOutcome) error
	FinishRun(ctx context.Context, runID string, aborted bool) error
}

type Pipeline struct {
	SiteUrl   string
	Paths     Paths
	Session   *browser.Session
	Feed      Feed
	Submitter submitter.Submitter
	Capturer  receipt.Capturer
	Log       Recorder

	tel telemetry.API
}

type Params struct {
	SiteUrl   string
	Paths     Paths
	Session   *browser.Session
	Feed      Feed
	Submitter submitter.Submitter
	Log       Recorder
}

func New(params Params, tel telemetry.API) Pipeline {
	assert.NotEmptyStr(params.SiteUrl)
	assert.NotEmptyStr(params.Paths.Output)
	assert.NotNil(params.Session)
	assert.NotNil(params.Feed)
	assert.NotNil(params.Log)

	return Pipeline{
		SiteUrl:   params.SiteUrl,
		Paths:     params.Paths,
		Session:   params.Session,
		Feed:      params.Feed,
		Submitter: params.Submitter,
		Capturer:  receipt.NewCapturer(params.Paths.Receipts(), params.Paths.Screenshots(), tel),
		Log:       params.Log,
		tel:       telemetry.NewScopedAPI("pipeline", tel),
	}
}

type Summary struct {
	RunID     string
	Orders    []runlog.OrderOutcome
	Succeeded int
	Failed    int
	Archive   string
}

// Run executes the whole workflow once: open the site, load the feed, submit and
// capture every order, archive the receipts and clean up the working directories.
//
// An order rejected by validation more than the submitter allows is recorded and
// skipped. Any other failure stops the run immediately, leaving the working
// directories as they are.
func (p Pipeline) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	summary := Summary{}

	runID, err := p.Log.StartRun(ctx)
	if err != nil {
		return p.fail(ctx, span, summary, fmt.Errorf("start run: %w", err))
	}
	summary.RunID = runID
	span.SetAttributes(attribute.String("run_id", runID))

	err = p.prepare()
	if err != nil {
		return p.fail(ctx, span, summary, fmt.Errorf("prepare output: %w", err))
	}

	err = p.Session.Open(ctx, p.SiteUrl)
	if err != nil {
		return p.fail(ctx, span, summary, fmt.Errorf("open site: %w", err))
	}

	rows, err := p.Feed.Load(ctx)
	if err != nil {
		return p.fail(ctx, span, summary, fmt.Errorf("load orders: %w", err))
	}
	span.SetAttributes(attribute.Int("orders", len(rows)))
	p.tel.ReportCount(report_pipeline_order, int64(len(rows)))

	for i, order := range rows {
		outcome, err := p.processOrder(ctx, i, order)
		summary.Orders = append(summary.Orders, outcome)
		if outcome.Outcome == submitter.Success.String() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		recordErr := p.Log.RecordOrder(ctx, runID, outcome)
		if recordErr != nil {
			p.tel.ReportWarning(report_pipeline_order, fmt.Errorf("record outcome: %w", recordErr), order.Number)
		}
		if err != nil {
			return p.fail(ctx, span, summary, fmt.Errorf("order %s: %w", order.Number, err))
		}
	}

	err = archive.Folder(p.Paths.Receipts(), p.Paths.Archive())
	if err != nil {
		return p.fail(ctx, span, summary, fmt.Errorf("archive receipts: %w", err))
	}
	summary.Archive = p.Paths.Archive()

	err = cleanup.Clean(p.Paths.Receipts(), p.Paths.Screenshots())
	if err != nil {
		return p.fail(ctx, span, summary, fmt.Errorf("clean up: %w", err))
	}

	err = p.Log.FinishRun(ctx, runID, false)
	if err != nil {
		p.tel.ReportWarning(report_pipeline_run, fmt.Errorf("finish run: %w", err), runID)
	}
	return summary, nil
}

// prepare removes working files left behind by an earlier aborted run so the
// archive only ever holds this run's receipts.
func (p Pipeline) prepare() error {
	err := cleanup.Clean(p.Paths.Receipts(), p.Paths.Screenshots())
	if err != nil {
		return err
	}
	return errors.Join(
		os.MkdirAll(p.Paths.Receipts(), 0777),
		os.MkdirAll(p.Paths.Screenshots(), 0777),
	)
}

func (p Pipeline) fail(ctx context.Context, span trace.Span, summary Summary, err error) (Summary, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.tel.ReportBroken(report_pipeline_run, err, summary.RunID)

	if summary.RunID != "" {
		// the run context may be the reason for failing
		finishErr := p.Log.FinishRun(context.WithoutCancel(ctx), summary.RunID, true)
		if finishErr != nil {
			p.tel.ReportWarning(report_pipeline_run, fmt.Errorf("finish run: %w", finishErr), summary.RunID)
		}
	}
	return summary, err
}

func (p Pipeline) processOrder(ctx context.Context, index int, order orders.Order) (runlog.OrderOutcome, error) {
	ctx, span := tracer.Start(ctx, "processOrder", trace.WithAttributes(
		attribute.String("order_number", order.Number),
	))
	defer span.End()

	outcome := runlog.OrderOutcome{
		Index:       index,
		OrderNumber: order.Number,
	}
	page := p.Session.Page()

	result := p.Submitter.Submit(ctx, page, order)
	outcome.Outcome = result.Outcome.String()
	outcome.Attempts = result.Attempts
	span.SetAttributes(attribute.Int("attempts", result.Attempts))

	switch result.Outcome {
	case submitter.ValidationFailed:
		outcome.Error = result.Err.Error()
		span.SetStatus(codes.Error, outcome.Error)
		err := p.Session.Reopen(ctx)
		if err != nil {
			return outcome, fmt.Errorf("reset order form: %w", err)
		}
		return outcome, nil
	case submitter.Aborted:
		outcome.Error = result.Err.Error()
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, outcome.Error)
		return outcome, result.Err
	}

	artifacts, err := p.Capturer.Capture(ctx, page, order.Number)
	if err != nil {
		outcome.Outcome = submitter.Aborted.String()
		outcome.Error = err.Error()
		span.RecordError(err)
		return outcome, err
	}
	outcome.ReceiptID = artifacts.ReceiptID

	err = p.Submitter.Advance(ctx, page)
	if err != nil {
		// the receipt was captured, only moving on to the next order failed
		outcome.Error = err.Error()
		span.RecordError(err)
		return outcome, err
	}
	return outcome, nil
}
