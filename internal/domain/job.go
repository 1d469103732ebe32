package domain

import "github.com/segmentio/ksuid"

// DownloadJob is one VOD to fetch. It is created once the VOD URL is known
// to resolve and is never mutated afterwards.
type DownloadJob struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SourceURL string `json:"url"`
	PosterURL string `json:"poster"`
}

// NewDownloadJob assigns a time-sortable ID to a resolved VOD.
func NewDownloadJob(title, sourceURL, posterURL string) DownloadJob {
	return DownloadJob{
		ID:        ksuid.New().String(),
		Title:     title,
		SourceURL: sourceURL,
		PosterURL: posterURL,
	}
}
