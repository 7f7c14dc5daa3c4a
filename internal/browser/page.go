package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Page is the subset of a live browser page the ordering workflow drives.
//
// note: fault injection point
type Page interface {
	Goto(url string) error
	Click(selector string) error
	SelectOption(selector, value string) error
	Fill(selector, value string) error
	// IsVisible reports whether the selector currently matches a visible element, it does not wait.
	IsVisible(selector string) (bool, error)
	// WaitVisible blocks until the selector matches a visible element or the timeout elapses.
	WaitVisible(selector string, timeout time.Duration) error
	InnerHTML(selector string) (string, error)
	// Screenshot writes a png of the element matching the selector to path.
	Screenshot(selector, path string) error
}

type playwrightPage struct {
	page playwright.Page
}

func (p playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (p playwrightPage) Click(selector string) error {
	return p.page.Locator(selector).Click()
}

func (p playwrightPage) SelectOption(selector, value string) error {
	selected, err := p.page.Locator(selector).SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("no option with value %q in %s", value, selector)
	}
	return nil
}

func (p playwrightPage) Fill(selector, value string) error {
	return p.page.Locator(selector).Fill(value)
}

func (p playwrightPage) IsVisible(selector string) (bool, error) {
	return p.page.Locator(selector).IsVisible()
}

func (p playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p playwrightPage) InnerHTML(selector string) (string, error) {
	return p.page.Locator(selector).InnerHTML()
}

func (p playwrightPage) Screenshot(selector, path string) error {
	_, err := p.page.Locator(selector).Screenshot(playwright.LocatorScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}
