package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// contentSelectors are tried in order; the first match holds the article.
var contentSelectors = []string{"article", "main", "div.content"}

// noiseSelectors are removed from the content node before reading paragraphs.
const noiseSelectors = "script, style, nav, header, footer"

// extractParagraphs finds the article container and returns the trimmed text of
// its <p> elements joined by blank lines. It returns "" when no container or no
// paragraph text exists.
func extractParagraphs(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	return paragraphsFromDocument(doc), nil
}

func paragraphsFromDocument(doc *goquery.Document) string {
	var content *goquery.Selection
	for _, sel := range contentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			content = found
			break
		}
	}
	if content == nil {
		return ""
	}

	content.Find(noiseSelectors).Remove()

	var paragraphs []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

// extractReadable is the fallback for pages without a recognised container.
// pageURL resolves relative links and may be nil.
func extractReadable(page []byte, pageURL *url.URL) (string, error) {
	parsed, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}
	return strings.TrimSpace(parsed.TextContent), nil
}
