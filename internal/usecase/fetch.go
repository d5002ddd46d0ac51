package usecase

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"WikiAnswers/internal/domain"
	"WikiAnswers/internal/metrics"
)

// fetchContent retrieves the article body and its image candidates with two
// independent concurrent queries. An extract failure is terminal; an image
// enumeration failure only empties the candidate set.
func (p *Pipeline) fetchContent(ctx context.Context, title string) (domain.ArticleContent, []domain.ImageCandidate, error) {
	var (
		body       string
		candidates []domain.ImageCandidate
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := p.content.Extract(gctx, title)
		if err != nil {
			return err
		}
		body = text
		return nil
	})

	g.Go(func() error {
		titles, err := p.content.ListImages(gctx, title)
		if err != nil {
			p.logger.Warn("image enumeration failed", "title", title, "error", err)
			return nil
		}
		candidates = p.fetchImageMetadata(gctx, titles)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.ArticleContent{}, nil, err
	}

	return domain.ArticleContent{Identifier: title, Body: body}, candidates, nil
}

// fetchImageMetadata resolves URL/caption/description for each file title
// with a bounded fan-out. A failed lookup drops only that candidate; the
// surviving candidates keep their discovery order.
func (p *Pipeline) fetchImageMetadata(ctx context.Context, titles []string) []domain.ImageCandidate {
	results := make([]domain.ImageCandidate, len(titles))
	resolved := make([]bool, len(titles))

	var g errgroup.Group
	g.SetLimit(p.fetchWorkers)
	for i, fileTitle := range titles {
		g.Go(func() error {
			info, err := p.content.ImageInfo(ctx, fileTitle)
			if err != nil {
				metrics.ImageFetchFailures.WithLabelValues("metadata").Inc()
				p.logger.Warn("image metadata failed, dropping candidate",
					"file", fileTitle, "error", err)
				return nil
			}
			results[i] = info
			resolved[i] = true
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]domain.ImageCandidate, 0, len(titles))
	for i := range results {
		if resolved[i] {
			kept = append(kept, results[i])
		}
	}
	return kept
}

// fetchMedia downloads image bytes with a bounded fan-out and stages each
// success under the run prefix. A failed download or upload leaves that
// candidate rankable by metadata alone. Reports whether anything was staged.
func (p *Pipeline) fetchMedia(ctx context.Context, runPrefix, topic string, candidates []domain.ImageCandidate) bool {
	if p.downloader == nil || len(candidates) == 0 {
		return false
	}

	var staged atomic.Bool
	var g errgroup.Group
	g.SetLimit(p.fetchWorkers)
	for i := range candidates {
		g.Go(func() error {
			candidate := &candidates[i]

			data, err := p.downloader.Download(ctx, candidate.SourceURL)
			if err != nil {
				metrics.ImageFetchFailures.WithLabelValues("download").Inc()
				p.logger.Warn("image download failed",
					"file", candidate.Identifier, "error", err)
				return nil
			}
			candidate.Bytes = data

			if p.store == nil {
				return nil
			}

			// Mark before the upload attempt so cleanup also covers
			// partially written objects.
			staged.Store(true)
			key := stagingKey(runPrefix, topic, candidate.SourceURL)
			if err := p.store.Put(ctx, key, data); err != nil {
				metrics.ImageFetchFailures.WithLabelValues("staging").Inc()
				p.logger.Warn("image staging failed",
					"file", candidate.Identifier, "error", err)
				return nil
			}
			candidate.StagedURL = p.store.PublicURL(key)
			return nil
		})
	}
	_ = g.Wait()

	return staged.Load()
}

// stagingKey scopes a staged object to the current run and topic, mirroring
// the <topic>_<basename> naming of the source files.
func stagingKey(runPrefix, topic, sourceURL string) string {
	name := sourceURL
	if u, err := url.Parse(sourceURL); err == nil && u.Path != "" {
		name = path.Base(u.Path)
	}
	return runPrefix + "/" + strings.ReplaceAll(topic, " ", "_") + "_" + name
}
