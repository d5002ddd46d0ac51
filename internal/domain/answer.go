package domain

// ArticleContent is the plain-text body fetched for one resolved article.
type ArticleContent struct {
	Identifier string
	Body       string
}

// ImageCandidate describes an image discovered for an article before ranking.
// Bytes and StagedURL stay empty when the download or staging step failed;
// the candidate remains rankable by its textual metadata.
type ImageCandidate struct {
	Identifier  string
	SourceURL   string
	Caption     string
	Description string
	Bytes       []byte
	StagedURL   string
}

// DisplayURL prefers the staged copy when one exists.
func (c ImageCandidate) DisplayURL() string {
	if c.StagedURL != "" {
		return c.StagedURL
	}
	return c.SourceURL
}

// RankedImage pairs a candidate with its relevance score in [0,100].
type RankedImage struct {
	ImageCandidate
	Score int
}

// Answer is the successful outcome of one pipeline run. A run yields either
// an Answer or an error, never both.
type Answer struct {
	Summary   string
	TopImages []RankedImage
}
