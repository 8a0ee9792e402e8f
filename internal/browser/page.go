package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/errgroup"
)

// Page is the set of page interactions the scraper relies on.
type Page interface {
	Goto(url string) error
	WaitVisible(selector string, timeout time.Duration) error
	Type(selector, text string, delay time.Duration) error
	SubmitAndWaitForPathChange(submitSelector, fromPath string, timeout time.Duration) error
	ScrollHeight() (int, error)
	ScrollToBottom() error
	Content() (string, error)
	URL() string
	Close() error
}

type playwrightPage struct {
	page    playwright.Page
	timeout time.Duration
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.timeout
	}

	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("selector %q not visible within %s: %w", selector, timeout, err)
	}
	return nil
}

func (p *playwrightPage) Type(selector, text string, delay time.Duration) error {
	err := p.page.Locator(selector).PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(float64(delay.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to type into %q: %w", selector, err)
	}
	return nil
}

// SubmitAndWaitForPathChange clicks the submit control while waiting for
// location.pathname to leave fromPath. Both must finish for the submit to
// count.
func (p *playwrightPage) SubmitAndWaitForPathChange(submitSelector, fromPath string, timeout time.Duration) error {
	var g errgroup.Group

	g.Go(func() error {
		if err := p.page.Locator(submitSelector).Click(); err != nil {
			return fmt.Errorf("failed to click %q: %w", submitSelector, err)
		}
		return nil
	})

	g.Go(func() error {
		_, err := p.page.WaitForFunction(`(from) => location.pathname !== from`, fromPath,
			playwright.PageWaitForFunctionOptions{
				Timeout: playwright.Float(float64(timeout.Milliseconds())),
			})
		if err != nil {
			return fmt.Errorf("still on %s after %s: %w", fromPath, timeout, err)
		}
		return nil
	})

	return g.Wait()
}

func (p *playwrightPage) ScrollHeight() (int, error) {
	v, err := p.page.Evaluate(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return toInt(v)
}

func (p *playwrightPage) ScrollToBottom() error {
	if _, err := p.page.Evaluate(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (p *playwrightPage) Content() (string, error) {
	html, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

// toInt normalises numbers coming back from page evaluation.
func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected number type %T", v)
	}
}
