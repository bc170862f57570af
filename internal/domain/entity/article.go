// Package entity defines the core domain objects of an episode: headlines, articles and
// their summaries, along with the error taxonomy shared by the summarization layers.
package entity

import (
	"strings"
	"time"
)

// Headline is a candidate story returned by a headline source before its full text is fetched.
type Headline struct {
	Title       string
	Description string
	Source      string
	URL         string
	PublishedAt time.Time
}

// Article represents a news article stored in an episode's articles folder.
// It is read once and never mutated by the summarization pipeline.
type Article struct {
	Title  string
	Body   string
	Source string
	URL    string
}

// IsEmpty reports whether the article carries no body text.
func (a Article) IsEmpty() bool {
	return strings.TrimSpace(a.Body) == ""
}

// Validate checks the fields required before an article is written to disk.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.Contains(a.Title, "\n") {
		return &ValidationError{Field: "title", Message: "title must be a single line"}
	}
	if a.IsEmpty() {
		return &ValidationError{Field: "body", Message: "body is required"}
	}
	return nil
}

// Summary is the final summary produced for one article.
type Summary struct {
	Title string
	Text  string
}
