package timelinedocuments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject receives built documents when no subject is configured.
const DefaultSubject = "timeline.built"

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher sends built documents to a NATS subject.
type Publisher struct {
	conn    Conn
	subject string
	timeout time.Duration
	logger  *slog.Logger
}

// Connect dials the NATS server at url and returns a publisher for subject.
func Connect(url, subject string, timeout time.Duration, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("semtimeline"),
		nats.Timeout(timeout),
	)
	if err != nil {
		return nil, wrapNATSError(err, url)
	}
	return NewPublisher(conn, subject, timeout, logger), nil
}

// NewPublisher creates a publisher over an existing connection.
func NewPublisher(conn Conn, subject string, timeout time.Duration, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		conn:    conn,
		subject: subject,
		timeout: timeout,
		logger:  logger,
	}
}

// Publish sends doc as JSON and waits for the server to acknowledge the
// flush. The build ID is set as the message ID so JetStream streams
// de-duplicate redelivered builds.
func (p *Publisher) Publish(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, doc.BuildID)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("flush to %s: %w", p.subject, err)
	}

	p.logger.Info("Published timeline",
		"subject", p.subject,
		"build_id", doc.BuildID,
		"events", len(doc.Events))
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() {
	p.conn.Close()
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Unset nats.url to build without publishing, or point it at a running server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
