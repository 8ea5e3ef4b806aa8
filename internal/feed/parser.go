package feed

import (
	"crypto/sha256"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxSummaryLength = 280

var (
	imgRegex   = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	videoRegex = regexp.MustCompile(`<video[^>]+src=["']([^"']+)["']`)
	audioRegex = regexp.MustCompile(`<audio[^>]+src=["']([^"']+)["']`)
	tagRegex   = regexp.MustCompile(`<[^>]*>`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// Item is one parsed feed entry.
type Item struct {
	GUID      string
	Title     string
	Summary   string
	Link      string
	Authors   []string
	MediaURLs []string
	Published time.Time
}

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parse reads an RSS, Atom or JSON feed and returns its title and items.
func (p *Parser) Parse(reader io.Reader) (string, []Item, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return "", nil, fmt.Errorf("parsing feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		item := Item{
			GUID:      itemGUID(it),
			Title:     strings.TrimSpace(it.Title),
			Summary:   summarize(getContent(it)),
			Link:      it.Link,
			Authors:   authorNames(it),
			MediaURLs: extractMediaURLs(it),
		}
		if item.Title == "" {
			item.Title = item.Link
		}

		switch {
		case it.PublishedParsed != nil:
			item.Published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.Published = *it.UpdatedParsed
		}

		items = append(items, item)
	}

	return strings.TrimSpace(feed.Title), items, nil
}

// itemGUID falls back to a digest of link and title so repeated polls of a
// feed without GUIDs produce stable keys.
func itemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	sum := sha256.Sum256([]byte(item.Link + "\x00" + item.Title))
	return fmt.Sprintf("%x", sum[:8])
}

func getContent(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// summarize strips markup and shortens text for a notification body.
func summarize(s string) string {
	s = html.UnescapeString(tagRegex.ReplaceAllString(s, " "))
	s = strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
	if r := []rune(s); len(r) > maxSummaryLength {
		s = strings.TrimSpace(string(r[:maxSummaryLength-1])) + "…"
	}
	return s
}

func authorNames(item *gofeed.Item) []string {
	var names []string
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			names = append(names, strings.TrimSpace(a.Name))
		}
	}
	return names
}

func extractMediaURLs(item *gofeed.Item) []string {
	var urls []string

	for _, enclosure := range item.Enclosures {
		if enclosure.URL != "" {
			urls = append(urls, enclosure.URL)
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		urls = append(urls, item.Image.URL)
	}

	content := item.Content + " " + item.Description
	urls = append(urls, findMediaInHTML(content)...)

	return uniqueStrings(urls)
}

func findMediaInHTML(html string) []string {
	var urls []string
	for _, re := range []*regexp.Regexp{imgRegex, videoRegex, audioRegex} {
		for _, match := range re.FindAllStringSubmatch(html, -1) {
			if len(match) > 1 {
				urls = append(urls, match[1])
			}
		}
	}
	return urls
}

func uniqueStrings(strs []string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, s := range strs {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
