package ports

import (
	"context"

	"WikiAnswers/internal/domain"
)

// CompletionRequest carries one chat-completion exchange. Model may be empty
// to use the client default.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// CompletionClient is the opaque text-completion oracle. Output is untrusted
// natural language and must be validated by the caller.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ContentService is the encyclopedia API: search, text extracts, and
// per-image metadata, all keyed by textual identifiers.
type ContentService interface {
	// Search returns the best-match article title, or "" when nothing matched.
	Search(ctx context.Context, term string) (string, error)

	// Extract returns the plain-text article body. A missing page yields
	// domain.ErrNotFound; a page without an extract yields domain.ErrFetchFailure.
	Extract(ctx context.Context, title string) (string, error)

	// ListImages enumerates the article's image file titles, filtered to
	// supported formats.
	ListImages(ctx context.Context, title string) ([]string, error)

	// ImageInfo resolves one file title to its direct URL, caption, and
	// description.
	ImageInfo(ctx context.Context, fileTitle string) (domain.ImageCandidate, error)
}

// Downloader fetches raw image bytes from a direct URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ObjectStore stages downloaded bytes under externally addressable keys for
// the duration of one run. Not a durable system of record.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	PublicURL(key string) string
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// RankingStrategy orders candidates by relevance to the query and returns at
// most the top three. Implementations must not mutate the input slice.
type RankingStrategy interface {
	Name() string
	Rank(ctx context.Context, query string, candidates []domain.ImageCandidate) ([]domain.RankedImage, error)
}
