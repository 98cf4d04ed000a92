package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

const extractTimeout = 15 * time.Second

// ContentExtractor normalizes raw user input into a ContentItem
type ContentExtractor interface {
	Extract(ctx context.Context, input string) (ContentItem, error)
}

// HTTPExtractor fetches URLs and scrapes title, description and publisher
// metadata. Non-URL text passes through as a text item.
type HTTPExtractor struct {
	client *http.Client
}

// NewHTTPExtractor creates an extractor with a bounded HTTP client
func NewHTTPExtractor() *HTTPExtractor {
	return &HTTPExtractor{
		client: &http.Client{Timeout: extractTimeout},
	}
}

// Extract implements ContentExtractor
func (e *HTTPExtractor) Extract(ctx context.Context, input string) (ContentItem, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ContentItem{}, NewExtractionError(ErrExtractEmptyInput, "empty input", nil)
	}

	if isImageReference(input) {
		return ContentItem{}, NewExtractionError(ErrExtractUnsupported, "image content is not supported yet", nil)
	}

	if u := urlPattern.FindString(input); u != "" {
		return e.extractFromURL(ctx, u)
	}

	return textItem(input), nil
}

// textItem wraps plain text as a content item attributed to the user
func textItem(text string) ContentItem {
	title := text
	if runes := []rune(text); len(runes) > 100 {
		title = string(runes[:100])
	}
	return ContentItem{
		ID:         uuid.NewString(),
		Kind:       ContentText,
		Title:      title,
		Body:       text,
		SourceName: "user_input",
	}
}

// extractFromURL fetches the page and scrapes article metadata. A fetch
// failure still yields a minimal item so verification can proceed on the
// URL alone.
func (e *HTTPExtractor) extractFromURL(ctx context.Context, rawURL string) (ContentItem, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ContentItem{}, NewExtractionError(ErrExtractFetch, "invalid URL", err)
	}

	item := ContentItem{
		ID:         uuid.NewString(),
		Kind:       ContentURL,
		URL:        rawURL,
		SourceName: hostToSource(parsed.Host),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ContentItem{}, NewExtractionError(ErrExtractFetch, "failed to build request", err)
	}
	req.Header.Set("User-Agent", "VerityGuard/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		Logger().Warning("Fetch failed for %s: %v", rawURL, err)
		item.Title = "Content from " + parsed.Host
		return item, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		Logger().Warning("Fetch for %s returned status %d", rawURL, resp.StatusCode)
		item.Title = "Content from " + parsed.Host
		return item, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		item.Title = "Content from " + parsed.Host
		return item, nil
	}

	item.Title = scrapeTitle(doc, parsed.Host)
	item.Body = scrapeBody(doc)

	if published, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			item.PublishedAt = t
		}
	}
	if site, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok && site != "" {
		item.SourceName = site
	}

	return item, nil
}

// scrapeTitle prefers og:title, then the title tag, then a host fallback
func scrapeTitle(doc *goquery.Document, host string) string {
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title != "" {
		return strings.TrimSpace(title)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return "Content from " + host
}

// scrapeBody prefers the meta description, then article paragraphs
func scrapeBody(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && desc != "" {
		return strings.TrimSpace(desc)
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && desc != "" {
		return strings.TrimSpace(desc)
	}

	var parts []string
	doc.Find("article p, main p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			parts = append(parts, text)
		}
		return len(parts) < 5
	})
	return strings.Join(parts, " ")
}

// hostToSource strips the www prefix from a host for source matching
func hostToSource(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// isImageReference detects inputs we cannot analyze yet
func isImageReference(input string) bool {
	lower := strings.ToLower(input)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.HasPrefix(lower, "data:image/")
}
