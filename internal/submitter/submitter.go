package submitter

import (
	"context"
	"errors"
	"fmt"
	"robotorder/internal/browser"
	"robotorder/internal/components/telemetry"
	"robotorder/internal/orders"
	"strconv"
	"time"
)

const (
	report_submitter_submit  = "submitter.submit"
	report_submitter_advance = "submitter.advance"
)

const (
	SelectorHead         = "#head"
	SelectorLegs         = "input[type='number']"
	SelectorAddress      = "#address"
	SelectorPreview      = "text=Preview"
	SelectorOrder        = "button#order"
	SelectorAlert        = "div.alert.alert-danger"
	SelectorOrderAnother = "button#order-another"
)

// SelectorBody is the radio control for a body style.
func SelectorBody(body string) string {
	return fmt.Sprintf("input[name='body'][value='%s']", body)
}

var ErrValidationFailed = errors.New("order rejected by form validation")

type Outcome int

const (
	Success Outcome = iota
	ValidationFailed
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ValidationFailed:
		return "validation_failed"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome of submitting a single order.
type Result struct {
	Outcome Outcome
	// Attempts is the number of times the order button was clicked.
	Attempts int
	// Err is set for every outcome other than Success.
	Err error
}

type Options struct {
	// MaxAttempts bounds the number of order clicks while the validation alert stays visible.
	MaxAttempts int
	// ModalTimeout is how long to wait for the confirmation modal after ordering another robot.
	ModalTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:  10,
		ModalTimeout: time.Second * 10,
	}
}

type Submitter struct {
	opts Options
	tel  telemetry.API
}

func New(opts Options, tel telemetry.API) Submitter {
	defaults := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.ModalTimeout <= 0 {
		opts.ModalTimeout = defaults.ModalTimeout
	}
	return Submitter{
		opts: opts,
		tel:  telemetry.NewScopedAPI("submitter", tel),
	}
}

func (s Submitter) fill(page browser.Page, order orders.Order) error {
	err := page.SelectOption(SelectorHead, order.Head)
	if err != nil {
		return fmt.Errorf("select head %q: %w", order.Head, err)
	}
	err = page.Click(SelectorBody(order.Body))
	if err != nil {
		return fmt.Errorf("select body %q: %w", order.Body, err)
	}
	err = page.Fill(SelectorLegs, strconv.Itoa(order.Legs))
	if err != nil {
		return fmt.Errorf("fill legs: %w", err)
	}
	err = page.Fill(SelectorAddress, order.Address)
	if err != nil {
		return fmt.Errorf("fill address: %w", err)
	}
	err = page.Click(SelectorPreview)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

// Submit fills the order form and submits it, clicking the order button again for
// as long as the validation alert is visible, up to MaxAttempts clicks.
func (s Submitter) Submit(ctx context.Context, page browser.Page, order orders.Order) Result {
	aborted := func(attempts int, err error) Result {
		s.tel.ReportBroken(report_submitter_submit, err, order.Number)
		return Result{Outcome: Aborted, Attempts: attempts, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return Result{Outcome: Aborted, Err: err}
	}

	err := s.fill(page, order)
	if err != nil {
		return aborted(0, err)
	}

	attempts := 0
	for {
		err := page.Click(SelectorOrder)
		if err != nil {
			return aborted(attempts, fmt.Errorf("order: %w", err))
		}
		attempts++

		rejected, err := page.IsVisible(SelectorAlert)
		if err != nil {
			return aborted(attempts, fmt.Errorf("check validation alert: %w", err))
		}
		if !rejected {
			s.tel.ReportDebug("order submitted", order.Number, attempts)
			return Result{Outcome: Success, Attempts: attempts}
		}

		if attempts >= s.opts.MaxAttempts {
			err := fmt.Errorf("%w: order %s after %d attempts", ErrValidationFailed, order.Number, attempts)
			s.tel.ReportWarning(report_submitter_submit, err)
			return Result{Outcome: ValidationFailed, Attempts: attempts, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return Result{Outcome: Aborted, Attempts: attempts, Err: err}
		}
		s.tel.ReportDebug("order rejected, retrying", order.Number, attempts)
	}
}

// Advance moves from a completed order's receipt back to a blank order form.
func (s Submitter) Advance(ctx context.Context, page browser.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := page.Click(SelectorOrderAnother)
	if err != nil {
		s.tel.ReportBroken(report_submitter_advance, fmt.Errorf("order another: %w", err))
		return fmt.Errorf("order another: %w", err)
	}
	err = page.WaitVisible(browser.SelectorModalOK, s.opts.ModalTimeout)
	if err != nil {
		s.tel.ReportBroken(report_submitter_advance, fmt.Errorf("wait for modal: %w", err))
		return fmt.Errorf("wait for confirmation modal: %w", err)
	}
	err = page.Click(browser.SelectorModalOK)
	if err != nil {
		s.tel.ReportBroken(report_submitter_advance, fmt.Errorf("dismiss modal: %w", err))
		return fmt.Errorf("dismiss confirmation modal: %w", err)
	}
	return nil
}
