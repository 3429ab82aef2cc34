package linkenricher

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/semtimeline/source/weburl"
	"github.com/c360studio/semtimeline/timeline"
)

// PageFetcher retrieves a page body. *Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Resolver turns reference cells into timeline references, enriching links
// with page metadata.
type Resolver struct {
	fetcher PageFetcher
	metrics *Metrics
	logger  *slog.Logger
}

var _ timeline.Resolver = (*Resolver)(nil)

// NewResolver creates a new reference resolver. metrics may be nil.
func NewResolver(fetcher PageFetcher, metrics *Metrics, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher: fetcher,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve classifies raw and, for links, fetches the page and extracts its
// metadata. Failures are logged and degrade the result to a link without
// metadata; Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, raw string) timeline.Reference {
	if !weburl.IsLink(raw) {
		r.metrics.observe(OutcomeText, 0)
		return timeline.TextReference(raw)
	}

	ref := timeline.LinkReference(raw)

	start := time.Now()
	result, err := r.fetcher.Fetch(ctx, raw)
	elapsed := time.Since(start)
	if err != nil {
		if IsRedirectLimit(err) {
			r.logger.Warn("Redirect limit reached", "link", raw)
			r.metrics.observe(OutcomeRedirectLimit, elapsed)
		} else {
			r.logger.Warn("Reference fetch failed, continuing without metadata",
				"link", raw,
				"error", err)
			r.metrics.observe(OutcomeNetworkError, elapsed)
		}
		return ref
	}

	meta := ExtractContent(result.Body, result.ContentType)
	ref.Title = meta.Title
	ref.Description = meta.Description
	ref.Image = meta.Image

	if ref.HasMetadata() {
		r.metrics.observe(OutcomeEnriched, elapsed)
	} else {
		r.metrics.observe(OutcomeNoMetadata, elapsed)
	}

	r.logger.Debug("Reference resolved",
		"link", raw,
		"host", weburl.ExtractDomain(result.FinalURL),
		"status", result.StatusCode,
		"has_title", ref.Title != nil)

	return ref
}
