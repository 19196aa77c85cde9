// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors of the listing markup.
const (
	selectorCard     = ".badge-pos-1"
	selectorTitle    = ".item-summary .post-title h3 a"
	selectorRating   = ".item-summary .meta-item.rating .total_votes, .score"
	selectorChapter  = ".item-summary .list-chapter .chapter-item a"
	selectorCover    = ".item-thumb img"
	selectorNextPage = `a[aria-label="Next Page"]`
)

var (
	chapterPattern = regexp.MustCompile(`(?i)Chapter\s+(\d+)`)
	numberPattern  = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)`)
)

// Card is one comic as it appears on a listing page.
type Card struct {
	Name     string
	Link     string
	Rating   *float64
	Chapters int
	// CoverURL is the absolute cover image URL, empty when the card has none.
	CoverURL string
}

/*
ParseListing extracts the cards and the next-page link from a listing page.

Description: Links are resolved against pageURL. The chapter count is read
from the first chapter entry of each card ("Chapter 123"); a card without one
has 0 chapters. A rating that does not start with a number is dropped.

Returns:
  - []Card: Cards in page order
  - *url.URL: The next listing page, nil on the last page
  - error: Malformed HTML
*/
func ParseListing(body io.Reader, pageURL *url.URL) ([]Card, *url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, nil, fmt.Errorf("scrape: parse %s: %w", pageURL, err)
	}

	var cards []Card
	doc.Find(selectorCard).Each(func(_ int, block *goquery.Selection) {
		anchor := block.Find(selectorTitle).First()
		card := Card{
			Name:     strings.TrimSpace(anchor.Text()),
			Link:     resolve(pageURL, anchor.AttrOr("href", "")),
			Rating:   parseRating(block.Find(selectorRating).First().Text()),
			Chapters: parseChapters(block.Find(selectorChapter).First().Text()),
			CoverURL: resolve(pageURL, block.Find(selectorCover).First().AttrOr("src", "")),
		}
		cards = append(cards, card)
	})

	var next *url.URL
	if href, ok := doc.Find(selectorNextPage).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		next, err = pageURL.Parse(strings.TrimSpace(href))
		if err != nil {
			next = nil
		}
	}

	return cards, next, nil
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func parseRating(text string) *float64 {
	match := numberPattern.FindString(strings.TrimSpace(text))
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseChapters(text string) int {
	match := chapterPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0
	}
	chapters, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return chapters
}
