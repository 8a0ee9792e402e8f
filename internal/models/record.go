package models

const (
	FieldTitle   = "title"
	FieldTagline = "tagline"
	FieldRevenue = "mrr"
	FieldLink    = "link"
)

// Record is one listing card scraped from a tier page.
type Record struct {
	Title        string `json:"title"`
	Tagline      string `json:"tagline"`
	RevenueLabel string `json:"mrr"`
	Link         string `json:"link"`
	Tier         Tier   `json:"mrrTier"`

	// Missing names the card sub-elements that were absent. The matching
	// string fields are left empty.
	Missing []string `json:"missing,omitempty"`
}

func (r *Record) Has(field string) bool {
	for _, m := range r.Missing {
		if m == field {
			return false
		}
	}
	return true
}

func (r *Record) IsComplete() bool {
	return len(r.Missing) == 0
}
