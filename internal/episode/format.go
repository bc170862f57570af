package episode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"newscast/internal/domain/entity"
)

const (
	titlePrefix   = "Title: "
	sourcePrefix  = "Source: "
	urlPrefix     = "URL: "
	contentMarker = "Content:\n"
	summaryMarker = "Summary:\n"
)

// FormatArticle renders an article file:
//
//	Title: <title>
//
//	Source: <source>      (optional)
//
//	URL: <url>            (optional)
//
//	Content:
//	<body>
func FormatArticle(a entity.Article) string {
	var b strings.Builder
	b.WriteString(titlePrefix + a.Title + "\n\n")
	if a.Source != "" {
		b.WriteString(sourcePrefix + a.Source + "\n\n")
	}
	if a.URL != "" {
		b.WriteString(urlPrefix + a.URL + "\n\n")
	}
	b.WriteString(contentMarker)
	b.WriteString(a.Body)
	return b.String()
}

// ParseArticle reads the title from the first line and the body from everything after
// the first "Content:\n". Source and URL lines in the header are optional.
func ParseArticle(s string) (entity.Article, error) {
	header, body, ok := strings.Cut(s, contentMarker)
	if !ok {
		return entity.Article{}, fmt.Errorf("%w: missing %q marker", entity.ErrMalformedArticle, strings.TrimSpace(contentMarker))
	}

	first, rest, _ := strings.Cut(header, "\n")
	a := entity.Article{
		Title: strings.TrimPrefix(strings.TrimRight(first, "\r"), titlePrefix),
		Body:  body,
	}
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, sourcePrefix):
			a.Source = strings.TrimPrefix(line, sourcePrefix)
		case strings.HasPrefix(line, urlPrefix):
			a.URL = strings.TrimPrefix(line, urlPrefix)
		}
	}
	return a, nil
}

// FormatSummary renders a summary file: "Title: <title>\nSummary:\n<summary>".
func FormatSummary(s entity.Summary) string {
	return titlePrefix + s.Title + "\n" + summaryMarker + s.Text
}

// ParseSummary splits a summary file on the first "Summary:\n".
func ParseSummary(s string) (entity.Summary, error) {
	header, summary, ok := strings.Cut(s, summaryMarker)
	if !ok {
		return entity.Summary{}, fmt.Errorf("%w: missing %q marker", entity.ErrMalformedSummary, strings.TrimSpace(summaryMarker))
	}
	first, _, _ := strings.Cut(header, "\n")
	return entity.Summary{
		Title: strings.TrimPrefix(strings.TrimRight(first, "\r"), titlePrefix),
		Text:  summary,
	}, nil
}

// ReadArticle loads and parses an article file.
func ReadArticle(path string) (entity.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Article{}, fmt.Errorf("read article: %w", err)
	}
	a, err := ParseArticle(string(data))
	if err != nil {
		return entity.Article{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// WriteArticle renders and writes an article file.
func WriteArticle(path string, a entity.Article) error {
	if err := os.WriteFile(path, []byte(FormatArticle(a)), 0o644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	return nil
}

// ReadSummary loads and parses a summary file.
func ReadSummary(path string) (entity.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("read summary: %w", err)
	}
	s, err := ParseSummary(string(data))
	if err != nil {
		return entity.Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// WriteSummary renders and writes a summary file.
func WriteSummary(path string, s entity.Summary) error {
	if err := os.WriteFile(path, []byte(FormatSummary(s)), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ReadScript loads the podcast script.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

// WriteScript writes the podcast script, creating its folder if needed.
func WriteScript(path, script string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create scripts folder: %w", err)
	}
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}
