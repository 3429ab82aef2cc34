// Package timeline turns tabular event rows into an enriched, date-ordered
// timeline.
//
// # Overview
//
// Each input row has a fixed positional shape:
//
//	date (M/D/YYYY), summary, reference, reference, ...
//
// The Parser validates every row, resolves each non-blank reference through a
// Resolver (plain text or a fetched web page), and returns the events sorted
// ascending by date. Events sharing a date keep their input order.
//
// # Errors
//
// A row whose date cannot be parsed, or which lacks a summary column, fails the
// whole batch with a *MalformedInputError. Reference failures never surface
// here: resolvers degrade a broken link to a link-only Reference.
//
// # Identifiers
//
// FormatID derives an anchor identifier from an event's date and summary, for
// example "2020-01-01-foo-bar-baz". Identifiers are not de-duplicated; two
// events on the same date with similar summaries may collide.
//
// # Usage
//
//	resolver := linkenricher.NewResolver(fetcher, metrics, logger)
//	events, err := timeline.NewParser(resolver, 4, logger).Parse(ctx, rows)
package timeline
