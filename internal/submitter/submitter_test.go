package submitter

import (
	"context"
	"robotorder/internal/browser"
	"robotorder/internal/browser/browsertest"
	"robotorder/internal/components/telemetry"
	"robotorder/internal/orders"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var order = orders.Order{Number: "1", Head: "2", Body: "B03", Legs: 4, Address: "Main St 1"}

func TestSubmit(t *testing.T) {
	page := browsertest.New()
	s := New(DefaultOptions(), telemetry.SlogAPI{})

	res := s.Submit(context.Background(), page, order)
	require.Equal(t, Result{Outcome: Success, Attempts: 1}, res)

	require.Equal(t, []browsertest.Action{
		{Kind: "select", Selector: "#head", Value: "2"},
		{Kind: "click", Selector: "input[name='body'][value='B03']"},
		{Kind: "fill", Selector: "input[type='number']", Value: "4"},
		{Kind: "fill", Selector: "#address", Value: "Main St 1"},
		{Kind: "click", Selector: "text=Preview"},
		{Kind: "click", Selector: "button#order"},
		{Kind: "is_visible", Selector: "div.alert.alert-danger"},
	}, page.Actions())
}

func TestSubmitRetry(t *testing.T) {
	page := browsertest.New()
	page.VisibleFor[SelectorAlert] = 2
	s := New(DefaultOptions(), telemetry.SlogAPI{})

	res := s.Submit(context.Background(), page, order)
	require.Equal(t, Success, res.Outcome)
	require.Equal(t, 3, res.Attempts)
	require.NoError(t, res.Err)
	require.Len(t, page.Actions("click"), 2+3)
}

func TestSubmitAlertNeverClears(t *testing.T) {
	page := browsertest.New()
	page.VisibleFor[SelectorAlert] = -1
	rec := &telemetry.Recorder{}
	s := New(Options{MaxAttempts: 4}, rec)

	res := s.Submit(context.Background(), page, order)
	require.Equal(t, ValidationFailed, res.Outcome)
	require.Equal(t, 4, res.Attempts)
	require.ErrorIs(t, res.Err, ErrValidationFailed)
	require.Len(t, rec.Reports("warning"), 1)
}

func TestSubmitMissingElement(t *testing.T) {
	page := browsertest.New()
	page.Missing[SelectorAddress] = true
	rec := &telemetry.Recorder{}
	s := New(DefaultOptions(), rec)

	res := s.Submit(context.Background(), page, order)
	require.Equal(t, Aborted, res.Outcome)
	require.Equal(t, 0, res.Attempts)
	require.Error(t, res.Err)
	require.Len(t, rec.Reports("broken"), 1)
	require.Empty(t, page.Actions("is_visible"))
}

func TestSubmitCancelled(t *testing.T) {
	page := browsertest.New()
	page.VisibleFor[SelectorAlert] = -1
	s := New(DefaultOptions(), telemetry.SlogAPI{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.Submit(ctx, page, order)
	require.Equal(t, Aborted, res.Outcome)
	require.ErrorIs(t, res.Err, context.Canceled)
	require.Empty(t, page.Actions())
}

func TestAdvance(t *testing.T) {
	page := browsertest.New()
	s := New(Options{ModalTimeout: time.Second * 3}, telemetry.SlogAPI{})

	err := s.Advance(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, []browsertest.Action{
		{Kind: "click", Selector: SelectorOrderAnother},
		{Kind: "wait_visible", Selector: browser.SelectorModalOK, Value: "3s"},
		{Kind: "click", Selector: browser.SelectorModalOK},
	}, page.Actions())
}

func TestAdvanceModalNeverShows(t *testing.T) {
	page := browsertest.New()
	page.Missing[browser.SelectorModalOK] = true
	s := New(DefaultOptions(), telemetry.SlogAPI{})

	err := s.Advance(context.Background(), page)
	require.Error(t, err)
	require.Len(t, page.Actions("click"), 1)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "success", Success.String())
	require.Equal(t, "validation_failed", ValidationFailed.String())
	require.Equal(t, "aborted", Aborted.String())
}
