package domain

import "time"

// Post is a single social-feed message returned by a tag search.
type Post struct {
	ID        string
	Text      string
	Author    string
	CreatedAt time.Time
}

// Candidate is a tradeable symbol extracted from a scored post. Score carries
// the sentiment of the post the symbol was lifted from.
type Candidate struct {
	Symbol string
	Score  float64
	PostID string
	Text   string
}
