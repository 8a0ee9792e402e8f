package parser

import (
	"github.com/maltedev/indiehackers-scraper/internal/models"
)

type Parser interface {
	ParseListings(html string, pageURL string) ([]models.Record, error)
}
