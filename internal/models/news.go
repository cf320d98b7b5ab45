package models

import "time"

// NewsItem is one headline for a symbol. Best-effort: fields other than
// Title may be empty, and PublishedAt is approximate when the source only
// reports a relative time.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
