// Package linkenricher resolves timeline reference cells into display-ready
// metadata by fetching and parsing the linked web pages.
//
// # Overview
//
// A reference cell is either plain text or a link. Links are fetched, and the
// page head is searched for a title, a description and a preview image.
// Enrichment is best-effort: any fetch failure degrades the reference to a
// link without metadata, and the timeline build carries on.
//
// # Architecture
//
//   - Fetcher: HTTP GET with a browser User-Agent, a per-call cookie jar and a
//     bounded redirect chain
//   - Extract: lenient HTML parsing of <title>, meta description (with an
//     og:description fallback) and og:image
//   - Resolver: classifies cells, calls the fetcher and extractor, and absorbs
//     every failure
//   - Metrics: Prometheus counters and a latency histogram per outcome
//
// # Errors
//
// Fetch distinguishes ErrRedirectLimitExceeded from *NetworkError. Neither is
// retried. The Resolver logs both as warnings and never returns them.
//
// # Configuration
//
// Key configuration options:
//
//   - FetchTimeout: per-request timeout (default 30s)
//   - MaxRedirects: redirect hops followed before failing (default 3)
//   - MaxContentSize: maximum response body size (default 10MB)
//   - UserAgent: User-Agent header (default: a desktop Chrome string)
//   - BlockPrivateNetworks: refuse loopback and private targets (default false)
//
// # Usage
//
//	fetcher := linkenricher.NewFetcher(linkenricher.DefaultConfig(), logger)
//	resolver := linkenricher.NewResolver(fetcher, linkenricher.NewMetrics(nil), logger)
//	ref := resolver.Resolve(ctx, "https://example.com/")
package linkenricher
