package browser

import (
	"context"
	"errors"
	"fmt"
	"robotorder/internal/components/assert"
	"robotorder/internal/components/telemetry"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	report_session_launch = "session.launch"
	report_session_open   = "session.open"
	report_session_close  = "session.close"
)

const (
	SelectorBeginOrdering = "text=Order your robot!"
	SelectorModalOK       = "text=OK"
)

type Options struct {
	// Headless runs chromium without a window.
	Headless bool
	// SlowMo delays every browser operation, it makes runs easier to follow by eye.
	SlowMo time.Duration
	// Timeout is the default timeout of every page operation, 0 keeps playwright's default.
	Timeout time.Duration
	// Install downloads the playwright driver and chromium before launching.
	Install bool
}

// Session owns the single live page of a run. It is created once by Launch
// and handed to every component that needs to drive the page.
type Session struct {
	page Page
	tel  telemetry.API
	url  string

	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewSession wraps an existing page, the returned session does not own any browser process.
func NewSession(page Page, tel telemetry.API) *Session {
	assert.NotNil(page)
	assert.NotNil(tel)
	return &Session{
		page: page,
		tel:  telemetry.NewScopedAPI("browser", tel),
	}
}

// Launch starts playwright and a chromium browser with a single page.
func Launch(opts Options, tel telemetry.API) (*Session, error) {
	tel = telemetry.NewScopedAPI("browser", tel)

	if opts.Install {
		err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
		})
		if err != nil {
			tel.ReportBroken(report_session_launch, fmt.Errorf("install: %w", err))
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		tel.ReportBroken(report_session_launch, fmt.Errorf("run playwright: %w", err))
		return nil, err
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		tel.ReportBroken(report_session_launch, fmt.Errorf("launch chromium: %w", err))
		pw.Stop()
		return nil, err
	}

	page, err := b.NewPage()
	if err != nil {
		tel.ReportBroken(report_session_launch, fmt.Errorf("new page: %w", err))
		b.Close()
		pw.Stop()
		return nil, err
	}
	if opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	return &Session{
		page:    playwrightPage{page: page},
		tel:     tel,
		pw:      pw,
		browser: b,
	}, nil
}

func (s *Session) Page() Page {
	return s.page
}

// Open navigates to the site, starts the ordering flow and dismisses the
// confirmation modal, leaving the page at the order form.
func (s *Session) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.tel.ReportDebug("open site", url)
	s.url = url

	err := s.page.Goto(url)
	if err != nil {
		s.tel.ReportBroken(report_session_open, fmt.Errorf("goto: %w", err), url)
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	err = s.page.Click(SelectorBeginOrdering)
	if err != nil {
		s.tel.ReportBroken(report_session_open, fmt.Errorf("begin ordering: %w", err))
		return fmt.Errorf("click %s: %w", SelectorBeginOrdering, err)
	}
	err = s.page.Click(SelectorModalOK)
	if err != nil {
		s.tel.ReportBroken(report_session_open, fmt.Errorf("dismiss modal: %w", err))
		return fmt.Errorf("click %s: %w", SelectorModalOK, err)
	}
	return nil
}

// Reopen repeats Open against the last opened url, it brings the page back to a
// blank order form regardless of what state the previous order left it in.
func (s *Session) Reopen(ctx context.Context) error {
	if s.url == "" {
		return fmt.Errorf("session was never opened")
	}
	return s.Open(ctx, s.url)
}

// Close releases the browser, it is a no-op for sessions made with NewSession.
func (s *Session) Close() error {
	var errs []error
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	err := errors.Join(errs...)
	if err != nil {
		s.tel.ReportWarning(report_session_close, err)
	}
	return err
}
