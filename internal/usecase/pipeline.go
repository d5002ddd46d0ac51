package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"WikiAnswers/internal/domain"
	"WikiAnswers/internal/metrics"
	"WikiAnswers/internal/ports"
)

// CompletionParams bundles per-call oracle settings.
type CompletionParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Completion ports.CompletionClient
	Content    ports.ContentService
	Downloader ports.Downloader
	Store      ports.ObjectStore // nil disables staging
	Ranker     ports.RankingStrategy
	Logger     *slog.Logger

	TopicParams   CompletionParams
	SummaryParams CompletionParams
	FetchWorkers  int
}

// Pipeline implements the query-fulfillment workflow: resolve the topic,
// fetch article text and images concurrently, rank images against the query,
// summarize, and clean up transient staging.
type Pipeline struct {
	completion ports.CompletionClient
	content    ports.ContentService
	downloader ports.Downloader
	store      ports.ObjectStore
	ranker     ports.RankingStrategy
	logger     *slog.Logger

	topicParams   CompletionParams
	summaryParams CompletionParams
	fetchWorkers  int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.FetchWorkers
	if workers <= 0 {
		workers = 8
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		completion:    deps.Completion,
		content:       deps.Content,
		downloader:    deps.Downloader,
		store:         deps.Store,
		ranker:        deps.Ranker,
		logger:        logger,
		topicParams:   deps.TopicParams,
		summaryParams: deps.SummaryParams,
		fetchWorkers:  workers,
	}
}

// Answer processes one query end to end. It returns either a populated
// answer or an error wrapping one of the domain error kinds, never both.
func (p *Pipeline) Answer(ctx context.Context, query string) (domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, domain.ErrEmptyQuery
	}

	metrics.QueriesTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	answer, err := p.run(ctx, query)
	if err != nil {
		metrics.PipelineFailures.WithLabelValues(failureKind(err)).Inc()
	}
	return answer, err
}

type summaryResult struct {
	text string
	err  error
}

func (p *Pipeline) run(ctx context.Context, query string) (domain.Answer, error) {
	topic, err := p.resolveTopic(ctx, query)
	if err != nil {
		return domain.Answer{}, err
	}
	p.logger.Info("topic resolved", "query", query, "topic", topic)

	title := p.locateArticle(ctx, topic)

	content, candidates, err := p.fetchContent(ctx, title)
	if err != nil {
		return domain.Answer{}, err
	}
	p.logger.Info("content fetched",
		"title", content.Identifier,
		"body_len", len(content.Body),
		"candidates", len(candidates))

	runPrefix := "runs/" + uuid.NewString()
	staged := false

	// Cleanup runs exactly once per run, after the media-fetch join, on both
	// success and error paths. Failures are logged, never surfaced.
	defer func() {
		if !staged || p.store == nil {
			return
		}
		if cerr := p.store.DeleteByPrefix(context.WithoutCancel(ctx), runPrefix); cerr != nil {
			p.logger.Warn("staging cleanup failed", "prefix", runPrefix, "error", cerr)
		}
	}()

	// Summarizing and media fetching run concurrently. Neither branch
	// cancels the other; the orchestrator reconciles both afterward.
	summaryCh := make(chan summaryResult, 1)
	go func() {
		text, serr := p.summarize(ctx, query, content.Body)
		summaryCh <- summaryResult{text: text, err: serr}
	}()

	staged = p.fetchMedia(ctx, runPrefix, topic, candidates)

	// Ranking needs only the fetched candidates, not the summary.
	ranked, err := p.ranker.Rank(ctx, query, candidates)
	if err != nil {
		p.logger.Warn("ranking failed, returning no images",
			"strategy", p.ranker.Name(), "error", err)
		ranked = nil
	}

	summary := <-summaryCh
	if summary.err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %v", domain.ErrSummarization, summary.err)
	}

	return domain.Answer{Summary: summary.text, TopImages: ranked}, nil
}

// resolveTopic extracts the single principal subject from the query via one
// completion call and defensively strips formatting artifacts.
func (p *Pipeline) resolveTopic(ctx context.Context, query string) (string, error) {
	raw, err := p.completion.Complete(ctx, ports.CompletionRequest{
		Model:       p.topicParams.Model,
		System:      topicSystemPrompt,
		User:        fmt.Sprintf(topicUserPromptFormat, query),
		Temperature: p.topicParams.Temperature,
		MaxTokens:   p.topicParams.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrResolutionFailure, err)
	}

	topic := cleanTopic(raw)
	if topic == "" {
		return "", domain.ErrResolutionFailure
	}
	return topic, nil
}

// locateArticle maps the topic to a canonical article title via search,
// falling back to the topic itself when nothing matched.
func (p *Pipeline) locateArticle(ctx context.Context, topic string) string {
	title, err := p.content.Search(ctx, topic)
	if err != nil {
		p.logger.Warn("article search failed, using topic as identifier",
			"topic", topic, "error", err)
		return topic
	}
	if title == "" {
		p.logger.Debug("no search hit, using topic as identifier", "topic", topic)
		return topic
	}
	return title
}

func (p *Pipeline) summarize(ctx context.Context, query, body string) (string, error) {
	text, err := p.completion.Complete(ctx, ports.CompletionRequest{
		Model:       p.summaryParams.Model,
		System:      summarySystemPrompt,
		User:        fmt.Sprintf(summaryUserPromptFormat, query, body),
		Temperature: p.summaryParams.Temperature,
		MaxTokens:   p.summaryParams.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// cleanTopic reduces the oracle's reply to a bare subject string: first
// non-empty line, wrapping punctuation and markup stripped.
func cleanTopic(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Trim(line, "\"'`*{}[]()#")
		line = strings.TrimSuffix(line, ".")
		return strings.Join(strings.Fields(line), " ")
	}
	return ""
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrResolutionFailure):
		return "resolution"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrFetchFailure):
		return "fetch"
	case errors.Is(err, domain.ErrSummarization):
		return "summarization"
	default:
		return "other"
	}
}
