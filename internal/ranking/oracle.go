package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"WikiAnswers/internal/domain"
	"WikiAnswers/internal/ports"
)

const oracleSystemPrompt = "You are a helpful assistant designed to output in JSON."

const oracleUserPromptFormat = `Read the image titles and their URLs:
%s
Rank the images by their relevance to the user's query: %s.
Respond with a JSON object of the form {"top_urls": ["...", "...", "..."]}
containing at most the 3 most relevant image URLs, best first, and nothing else.`

// OracleStrategy delegates ranking to the completion oracle, asking it to
// select and structure the top URLs as JSON. Non-deterministic; selectable
// via configuration instead of the fuzzy default.
type OracleStrategy struct {
	completion  ports.CompletionClient
	model       string
	temperature float64
	maxTokens   int
}

var _ ports.RankingStrategy = (*OracleStrategy)(nil)

// NewOracleStrategy wires the completion client and call parameters.
func NewOracleStrategy(completion ports.CompletionClient, model string, temperature float64, maxTokens int) *OracleStrategy {
	return &OracleStrategy{
		completion:  completion,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Name identifies the strategy inside the registry.
func (s *OracleStrategy) Name() string {
	return "oracle"
}

// Rank asks the oracle for the top URLs and maps them back onto candidates.
// URLs the oracle invented are discarded at the boundary.
func (s *OracleStrategy) Rank(ctx context.Context, query string, candidates []domain.ImageCandidate) ([]domain.RankedImage, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var listing strings.Builder
	byURL := make(map[string]domain.ImageCandidate, len(candidates))
	for _, candidate := range candidates {
		fmt.Fprintf(&listing, "- %s: %s\n", candidate.Identifier, candidate.SourceURL)
		byURL[candidate.SourceURL] = candidate
	}

	text, err := s.completion.Complete(ctx, ports.CompletionRequest{
		Model:       s.model,
		System:      oracleSystemPrompt,
		User:        fmt.Sprintf(oracleUserPromptFormat, listing.String(), query),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle ranking call: %w", err)
	}

	urls, err := parseTopURLs(text)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedImage, 0, topImageCount)
	for _, u := range urls {
		candidate, ok := byURL[u]
		if !ok {
			continue
		}
		ranked = append(ranked, domain.RankedImage{
			ImageCandidate: candidate,
			Score:          100 - 10*len(ranked),
		})
		if len(ranked) == topImageCount {
			break
		}
	}

	return ranked, nil
}

// parseTopURLs extracts the JSON object from the oracle text, tolerating
// surrounding prose or code fences.
func parseTopURLs(text string) ([]string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("oracle ranking returned no JSON object")
	}

	var parsed struct {
		TopURLs []string `json:"top_urls"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("decode oracle ranking: %w", err)
	}

	return parsed.TopURLs, nil
}
