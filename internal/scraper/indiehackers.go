package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maltedev/indiehackers-scraper/internal/browser"
	"github.com/maltedev/indiehackers-scraper/internal/models"
	"github.com/maltedev/indiehackers-scraper/internal/parser"
	"github.com/maltedev/indiehackers-scraper/internal/ratelimit"
)

const (
	emailInputSelector    = `input[placeholder="Enter your email address"]`
	passwordInputSelector = `input[placeholder="Enter your password"]`
	submitSelector        = `button[type="submit"]`
)

type SleepFunc func(ctx context.Context, d time.Duration) error

type Config struct {
	Launcher    browser.Launcher
	Browser     *browser.Options
	Options     Options
	Credentials Credentials
	Sinks       []Sink
}

// Scraper logs into the product directory and collects the listings of
// every revenue tier.
type Scraper struct {
	launch      browser.Launcher
	browserOpts *browser.Options
	opts        Options
	creds       Credentials
	tiers       []models.TierDefinition
	parser      parser.Parser
	sinks       []Sink
	limiter     ratelimit.RateLimiter
	sleep       SleepFunc
	logger      *slog.Logger
}

func NewScraper(cfg Config, logger *slog.Logger) *Scraper {
	if cfg.Launcher == nil {
		cfg.Launcher = browser.Launch
	}
	if cfg.Browser == nil {
		cfg.Browser = browser.DefaultOptions()
	}
	cfg.Options = cfg.Options.withDefaults()

	return &Scraper{
		launch:      cfg.Launcher,
		browserOpts: cfg.Browser,
		opts:        cfg.Options,
		creds:       cfg.Credentials,
		tiers:       models.DefaultTiers(cfg.Options.BaseURL),
		parser:      parser.NewListingParser(),
		sinks:       cfg.Sinks,
		limiter:     ratelimit.NewFixedRateLimiter(cfg.Options.TierDelay),
		sleep:       ratelimit.Sleep,
		logger:      logger.With("component", "scraper"),
	}
}

// Run performs one full extraction cycle: login, every tier in order, then
// every sink. The browser session is closed on every return path. Any
// failure aborts the run without partial results.
func (s *Scraper) Run(ctx context.Context) (*models.Run, error) {
	run := models.NewRun()
	s.logger.Info("starting scrape", "run_id", run.ID)

	session, err := s.launch(s.browserOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Error("failed to close browser", "error", err, "run_id", run.ID)
		}
	}()

	page, err := session.NewPage()
	if err != nil {
		return nil, err
	}

	if err := s.login(ctx, page); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "run_id", run.ID)

	for i, tier := range s.tiers {
		if i > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		records, err := s.scrapeTier(ctx, page, tier)
		if err != nil {
			return nil, err
		}

		if n := s.checkRevenue(tier, records); n > 0 {
			s.logger.Warn("tier has records outside its revenue window",
				"tier", tier.Label, "count", n)
		}

		run.Add(tier.Label, records)
		s.limiter.Done()
	}

	run.Complete()

	for _, sink := range s.sinks {
		if err := sink.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
	}

	s.logger.Info("saved products", "run_id", run.ID, "count", run.Len(),
		"duration", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))

	return run, nil
}

func (s *Scraper) login(ctx context.Context, page browser.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	signIn := strings.TrimRight(s.opts.BaseURL, "/") + s.opts.SignInPath
	if err := page.Goto(signIn); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	for _, selector := range []string{emailInputSelector, passwordInputSelector} {
		if err := page.WaitVisible(selector, 0); err != nil {
			return fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
	}

	if err := page.Type(emailInputSelector, s.creds.Email, s.opts.TypingDelay); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if err := page.Type(passwordInputSelector, s.creds.Password, s.opts.TypingDelay); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if err := page.SubmitAndWaitForPathChange(submitSelector, s.opts.SignInPath, s.opts.LoginTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	return nil
}

func (s *Scraper) scrapeTier(ctx context.Context, page browser.Page, tier models.TierDefinition) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("scraping tier", "tier", tier.Label, "url", tier.URL)

	if err := page.Goto(tier.URL); err != nil {
		return nil, err
	}

	if err := page.WaitVisible(parser.CardSelector, s.opts.ListingTimeout); err != nil {
		return nil, fmt.Errorf("%w on %s tier: %w", ErrNoListings, tier.Label, err)
	}

	scrolls, err := ScrollToStable(ctx, page, s.opts.ScrollPause, s.opts.MaxScrollAttempts, s.sleep)
	if err != nil {
		return nil, fmt.Errorf("failed to scroll %s tier: %w", tier.Label, err)
	}

	html, err := page.Content()
	if err != nil {
		return nil, err
	}

	records, err := s.parser.ParseListings(html, page.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s tier: %w", tier.Label, err)
	}

	s.logger.Info("scraped tier", "tier", tier.Label, "count", len(records),
		"incomplete", countIncomplete(records), "scrolls", scrolls)
	return records, nil
}

// countIncomplete counts records with at least one absent sub-element.
func countIncomplete(records []models.Record) int {
	n := 0
	for i := range records {
		if !records[i].IsComplete() {
			n++
		}
	}
	return n
}

// checkRevenue counts records whose revenue label parses to an amount
// outside the tier window. Those records are kept unchanged.
func (s *Scraper) checkRevenue(tier models.TierDefinition, records []models.Record) int {
	mismatches := 0
	for _, r := range records {
		if !r.Has(models.FieldRevenue) {
			continue
		}
		amount, ok := parser.ParseRevenue(r.RevenueLabel)
		if !ok || tier.Contains(amount) {
			continue
		}
		mismatches++
		s.logger.Debug("revenue outside tier window",
			"tier", tier.Label, "title", r.Title, "mrr", r.RevenueLabel)
	}
	return mismatches
}

// ScrollToStable scrolls to the bottom until the document height stops
// changing or maxAttempts scrolls were made. It returns the number of scrolls.
func ScrollToStable(ctx context.Context, page browser.Page, pause time.Duration, maxAttempts int, sleep SleepFunc) (int, error) {
	previous, err := page.ScrollHeight()
	if err != nil {
		return 0, err
	}

	scrolls := 0
	for scrolls < maxAttempts {
		if err := page.ScrollToBottom(); err != nil {
			return scrolls, err
		}
		scrolls++

		if err := sleep(ctx, pause); err != nil {
			return scrolls, err
		}

		current, err := page.ScrollHeight()
		if err != nil {
			return scrolls, err
		}
		if current == previous {
			break
		}
		previous = current
	}

	return scrolls, nil
}
