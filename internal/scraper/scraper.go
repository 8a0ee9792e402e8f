package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/maltedev/indiehackers-scraper/internal/models"
)

var (
	ErrLoginFailed = errors.New("login did not complete")
	ErrNoListings  = errors.New("no listing cards rendered")
)

// Sink persists the outcome of a finished run.
type Sink interface {
	Save(ctx context.Context, run *models.Run) error
}

type Credentials struct {
	Email    string
	Password string
}

// Options holds the fixed timings of an extraction cycle.
type Options struct {
	BaseURL           string
	SignInPath        string
	LoginTimeout      time.Duration
	ListingTimeout    time.Duration
	TypingDelay       time.Duration
	ScrollPause       time.Duration
	MaxScrollAttempts int
	TierDelay         time.Duration
}

func DefaultOptions() Options {
	return Options{
		BaseURL:           "https://www.indiehackers.com",
		SignInPath:        "/sign-in",
		LoginTimeout:      10 * time.Second,
		ListingTimeout:    15 * time.Second,
		TypingDelay:       50 * time.Millisecond,
		ScrollPause:       1500 * time.Millisecond,
		MaxScrollAttempts: 10,
		TierDelay:         time.Second,
	}
}

// withDefaults fills every zero field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BaseURL == "" {
		o.BaseURL = d.BaseURL
	}
	if o.SignInPath == "" {
		o.SignInPath = d.SignInPath
	}
	if o.LoginTimeout <= 0 {
		o.LoginTimeout = d.LoginTimeout
	}
	if o.ListingTimeout <= 0 {
		o.ListingTimeout = d.ListingTimeout
	}
	if o.TypingDelay <= 0 {
		o.TypingDelay = d.TypingDelay
	}
	if o.ScrollPause <= 0 {
		o.ScrollPause = d.ScrollPause
	}
	if o.MaxScrollAttempts <= 0 {
		o.MaxScrollAttempts = d.MaxScrollAttempts
	}
	if o.TierDelay <= 0 {
		o.TierDelay = d.TierDelay
	}
	return o
}
