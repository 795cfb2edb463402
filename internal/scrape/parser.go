package scrape

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
)

// ParseListings extracts the fixed listing schema from one results-page
// container. Missing optional fields (salary, rating) come back as ""
// rather than failing the card.
func ParseListings(src string, sel portal.Selectors, scrapedAt time.Time) ([]domain.Listing, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var listings []domain.Listing
	for _, card := range findAllByClass(doc, classToken(sel.ListingCard)) {
		l := domain.Listing{
			Title:      textByClass(card, classToken(sel.Title)),
			Company:    textByClass(card, classToken(sel.Company)),
			Location:   textByClass(card, classToken(sel.Location)),
			Experience: textByClass(card, classToken(sel.Experience)),
			Salary:     textByClass(card, classToken(sel.Salary)),
			Rating:     textByClass(card, classToken(sel.Rating)),
			Skills:     textsByClass(card, classToken(sel.Skill)),
			PostedOn:   textByClass(card, classToken(sel.PostedOn)),
			ApplyLink:  hrefByClass(card, classToken(sel.Title)),
			ScrapedAt:  scrapedAt,
		}
		if l.Title == "" {
			continue // not a job card
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// classToken reduces a CSS selector like "a.title" or ".comp-name" to
// the bare class token the DOM walk matches on.
func classToken(sel string) string {
	first := strings.Fields(sel)[0]
	if i := strings.LastIndex(first, "."); i >= 0 {
		return first[i+1:]
	}
	return first
}

func hasClass(n *html.Node, token string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == token {
				return true
			}
		}
	}
	return false
}

func findAllByClass(n *html.Node, token string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, token) {
			out = append(out, n)
			return // don't descend into a match
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirstByClass(n *html.Node, token string) *html.Node {
	if all := findAllByClass(n, token); len(all) > 0 {
		return all[0]
	}
	return nil
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func textByClass(card *html.Node, token string) string {
	if n := findFirstByClass(card, token); n != nil {
		return innerText(n)
	}
	return ""
}

func textsByClass(card *html.Node, token string) []string {
	var out []string
	for _, n := range findAllByClass(card, token) {
		if t := innerText(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func hrefByClass(card *html.Node, token string) string {
	n := findFirstByClass(card, token)
	if n == nil {
		return ""
	}
	// The class may sit on the anchor itself or on a wrapper around it.
	var findHref func(*html.Node) string
	findHref = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					return a.Val
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if h := findHref(c); h != "" {
				return h
			}
		}
		return ""
	}
	return findHref(n)
}
