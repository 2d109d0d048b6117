package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	TitleNotFound       = "Title not found"
	NoBulletPointsFound = "No bullet points found"
	DescriptionNotFound = "Description not found"
)

// selector is one step of a fallback chain. When attr is set the value is read
// from that attribute instead of the node text; all joins every match.
type selector struct {
	query string
	attr  string
	all   bool
}

// Marketplace markup changes often, so every field is read through an ordered
// chain and the first non-empty match wins.
var (
	titleSelectors = []selector{
		{query: "#productTitle"},
		{query: "#title #productTitle"},
		{query: "h1#title"},
		{query: "h1.a-size-large"},
		{query: "#ebooksProductTitle"},
		{query: `meta[name="title"]`, attr: "content"},
	}

	bulletSelectors = []string{
		"#feature-bullets ul li span.a-list-item",
		"#feature-bullets ul li",
		"#featurebullets_feature_div li",
	}

	descriptionSelectors = []selector{
		{query: "#productDescription p", all: true},
		{query: "#productDescription"},
		{query: ".productDescriptionWrapper"},
		{query: "#bookDescription_feature_div"},
		{query: "#aplus_feature_div"},
		{query: `meta[name="description"]`, attr: "content"},
	}

	bulletFiller = []string{
		"make sure this fits",
		"see more",
		"show more",
	}
)

// ExtractHTML parses markup and extracts a listing. Only unreadable input is
// an error; missing fields fall back to sentinel values.
func ExtractHTML(r io.Reader) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	listing := Extract(doc)
	return &listing, nil
}

func Extract(doc *goquery.Document) Listing {
	title := firstText(doc, titleSelectors)
	if title == "" {
		title = TitleNotFound
	}

	bullets := extractBullets(doc)
	if len(bullets) == 0 {
		bullets = []string{NoBulletPointsFound}
	}

	description := firstText(doc, descriptionSelectors)
	if description == "" {
		description = DescriptionNotFound
	}

	return Listing{
		Title:       title,
		Bullets:     bullets,
		Description: description,
	}
}

func firstText(doc *goquery.Document, chain []selector) string {
	for _, sel := range chain {
		if text := selectorText(doc.Find(sel.query), sel); text != "" {
			return text
		}
	}
	return ""
}

func selectorText(s *goquery.Selection, sel selector) string {
	switch {
	case sel.attr != "":
		var value string
		s.EachWithBreak(func(_ int, n *goquery.Selection) bool {
			v, _ := n.Attr(sel.attr)
			value = strings.TrimSpace(v)
			return value == ""
		})
		return value
	case sel.all:
		var parts []string
		s.Each(func(_ int, n *goquery.Selection) {
			if text := strings.TrimSpace(n.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, "\n")
	default:
		return strings.TrimSpace(s.First().Text())
	}
}

func extractBullets(doc *goquery.Document) []string {
	for _, query := range bulletSelectors {
		var bullets []string
		doc.Find(query).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" || isFiller(text) {
				return
			}
			bullets = append(bullets, text)
		})
		if len(bullets) > 0 {
			return bullets
		}
	}
	return nil
}

func isFiller(text string) bool {
	lower := strings.TrimLeft(strings.ToLower(text), "›» ")
	for _, phrase := range bulletFiller {
		if strings.HasPrefix(lower, phrase) {
			return true
		}
	}
	return false
}
