package domain

import "errors"

// Terminal pipeline failures. Call sites wrap these with fmt.Errorf("...: %w")
// so the HTTP boundary can classify with errors.Is while logs keep the detail.
var (
	// ErrEmptyQuery rejects blank input before any outbound call is made.
	ErrEmptyQuery = errors.New("query is required")

	// ErrResolutionFailure means the completion oracle produced no usable topic.
	ErrResolutionFailure = errors.New("could not determine the main topic")

	// ErrNotFound means the content service has no article for the identifier.
	ErrNotFound = errors.New("no matching article found")

	// ErrFetchFailure means the article exists but its extract is unavailable.
	ErrFetchFailure = errors.New("failed to fetch article text")

	// ErrSummarization means the summary completion call failed.
	ErrSummarization = errors.New("failed to generate summary")
)
