package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/indiehackers-scraper/internal/models"
)

// Selectors for the product directory markup. Changes on the site show up
// as empty fields, not as errors.
const (
	CardSelector    = ".product-card.ember-view"
	titleSelector   = ".product-card__name"
	taglineSelector = ".product-card__tagline"
	revenueSelector = ".product-card__revenue-number"
	linkSelector    = "a.product-card__link"
)

type ListingParser struct{}

func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// ParseListings returns one record per listing card in document order.
// Relative links are resolved against pageURL.
func (p *ListingParser) ParseListings(html string, pageURL string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}

	records := make([]models.Record, 0)
	doc.Find(CardSelector).Each(func(_ int, card *goquery.Selection) {
		records = append(records, p.parseCard(card, base))
	})

	return records, nil
}

func (p *ListingParser) parseCard(card *goquery.Selection, base *url.URL) models.Record {
	var rec models.Record

	rec.Title = textOf(card, titleSelector, models.FieldTitle, &rec.Missing)
	rec.Tagline = textOf(card, taglineSelector, models.FieldTagline, &rec.Missing)
	rec.RevenueLabel = textOf(card, revenueSelector, models.FieldRevenue, &rec.Missing)

	anchor := card.Find(linkSelector).First()
	href, ok := anchor.Attr("href")
	if anchor.Length() == 0 || !ok {
		rec.Missing = append(rec.Missing, models.FieldLink)
	} else {
		rec.Link = resolveLink(base, strings.TrimSpace(href))
	}

	return rec
}

func textOf(card *goquery.Selection, selector, field string, missing *[]string) string {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		*missing = append(*missing, field)
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
