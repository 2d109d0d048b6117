package model

import (
	"strings"
	"time"
)

type ListingContent struct {
	Title       string
	Bullets     []string
	Description string
}

type OriginalListing struct {
	ASIN        string
	Title       string
	Bullets     []string
	Description string
	CreatedAt   time.Time
}

func NewOriginalListing(asin string, content ListingContent) *OriginalListing {
	return &OriginalListing{
		ASIN:        asin,
		Title:       content.Title,
		Bullets:     content.Bullets,
		Description: content.Description,
	}
}

type OptimizedListing struct {
	ASIN           string
	OptTitle       string
	OptBullets     []string
	OptDescription string
	Keywords       string
	CreatedAt      time.Time
}

// KeywordList splits the comma-separated keywords, dropping blanks.
func (o *OptimizedListing) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(o.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Listing pairs the stored original with its optimized version, if any.
type Listing struct {
	Original  *OriginalListing
	Optimized *OptimizedListing
}
