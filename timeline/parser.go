package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semtimeline/source/weburl"
)

// DateLayout is the external date format of the first column. Month and day
// may be zero-padded or not.
const DateLayout = "1/2/2006"

// DefaultConcurrency is the number of references resolved in parallel when
// the caller does not choose a limit.
const DefaultConcurrency = 4

const (
	dateColumn    = 0
	summaryColumn = 1
	firstRefIndex = 2
)

// Resolver turns a raw reference cell into a Reference. Implementations must
// absorb their own failures; Resolve never fails.
type Resolver interface {
	Resolve(ctx context.Context, raw string) Reference
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, raw string) Reference

// Resolve calls f(ctx, raw).
func (f ResolverFunc) Resolve(ctx context.Context, raw string) Reference {
	return f(ctx, raw)
}

// StaticResolver classifies references without any network access: links get
// their Link set and no metadata.
var StaticResolver Resolver = ResolverFunc(func(_ context.Context, raw string) Reference {
	if weburl.IsLink(raw) {
		return LinkReference(raw)
	}
	return TextReference(raw)
})

// Parser builds timelines from tabular rows.
type Parser struct {
	resolver    Resolver
	concurrency int
	logger      *slog.Logger
}

// NewParser creates a parser. A nil resolver falls back to StaticResolver and
// a non-positive concurrency to DefaultConcurrency.
func NewParser(resolver Resolver, concurrency int, logger *slog.Logger) *Parser {
	if resolver == nil {
		resolver = StaticResolver
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		resolver:    resolver,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Build parses rows with default settings.
func Build(ctx context.Context, rows [][]string, resolver Resolver) (Timeline, error) {
	return NewParser(resolver, DefaultConcurrency, nil).Parse(ctx, rows)
}

// refSlot addresses one reference of one event.
type refSlot struct {
	event int
	index int
	raw   string
}

// Parse converts rows into a timeline sorted ascending by date.
//
// All rows are validated before any reference is resolved, so a malformed
// row fails fast without network traffic. No partial timeline is returned on
// error.
func (p *Parser) Parse(ctx context.Context, rows [][]string) (Timeline, error) {
	events := make(Timeline, len(rows))
	var slots []refSlot

	for i, row := range rows {
		event, refs, err := parseRow(i+1, row)
		if err != nil {
			return nil, err
		}
		event.References = make([]Reference, len(refs))
		for j, raw := range refs {
			slots = append(slots, refSlot{event: i, index: j, raw: raw})
		}
		events[i] = event
	}

	p.logger.Debug("Parsed timeline rows",
		"events", len(events),
		"references", len(slots))

	if err := p.resolveAll(ctx, events, slots); err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].Date.Before(events[b].Date)
	})

	return events, nil
}

// resolveAll resolves every slot through a bounded pool. Each goroutine
// writes exactly one slot, so results land by position, not completion order.
func (p *Parser) resolveAll(ctx context.Context, events Timeline, slots []refSlot) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, slot := range slots {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			events[slot.event].References[slot.index] = p.resolver.Resolve(gctx, slot.raw)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("resolve references: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("resolve references: %w", err)
	}
	return nil
}

// parseRow validates one row and returns the event skeleton plus its
// non-blank reference cells in column order.
func parseRow(rowNum int, row []string) (Event, []string, error) {
	if len(row) <= dateColumn {
		return Event{}, nil, &MalformedInputError{Row: rowNum, Column: "date"}
	}
	date, err := ParseDate(row[dateColumn])
	if err != nil {
		return Event{}, nil, &MalformedInputError{Row: rowNum, Column: "date", Value: row[dateColumn], err: err}
	}
	if len(row) <= summaryColumn {
		return Event{}, nil, &MalformedInputError{Row: rowNum, Column: "summary"}
	}

	var refs []string
	if len(row) > firstRefIndex {
		for _, cell := range row[firstRefIndex:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			refs = append(refs, cell)
		}
	}

	return Event{Date: date, Summary: row[summaryColumn]}, refs, nil
}

// ParseDate parses a M/D/YYYY date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
