package linkenricher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/c360studio/semtimeline/source/weburl"
)

// FetchResult contains the result of fetching a web page.
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	// FinalURL is the address the redirect chain ended at.
	FinalURL string
}

// Fetcher retrieves reference pages.
type Fetcher struct {
	transport      http.RoundTripper
	timeout        time.Duration
	userAgent      string
	maxRedirects   int
	maxContentSize int64
	blockPrivate   bool
	logger         *slog.Logger
}

// NewFetcher creates a new page fetcher.
func NewFetcher(cfg Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.GetFetchTimeout()
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	if cfg.BlockPrivateNetworks {
		// Resolved addresses are checked at dial time, after DNS.
		transport.DialContext = weburl.SafeDialContext(dialer.DialContext)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &Fetcher{
		transport:      transport,
		timeout:        timeout,
		userAgent:      cfg.GetUserAgent(),
		maxRedirects:   cfg.GetMaxRedirects(),
		maxContentSize: cfg.GetMaxContentSize(),
		blockPrivate:   cfg.BlockPrivateNetworks,
		logger:         logger,
	}
}

// Fetch retrieves the body of the page at urlStr, following redirects.
//
// Each call gets its own cookie jar, so cookies set during a redirect chain
// are replayed on later hops of that chain only. The body is returned for any
// final status code; error pages are still HTML.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResult, error) {
	if f.blockPrivate {
		if err := weburl.ValidateURL(urlStr); err != nil {
			return nil, NewNetworkError(urlStr, err)
		}
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := &http.Client{
		Transport:     f.transport,
		Jar:           jar,
		Timeout:       f.timeout,
		CheckRedirect: f.checkRedirect,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, NewNetworkError(urlStr, fmt.Errorf("create request: %w", err))
	}

	// Set headers
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	f.logger.Info("Retrieving reference", "url", urlStr)

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, ErrRedirectLimitExceeded) {
			return nil, fmt.Errorf("fetch %s: %w", urlStr, ErrRedirectLimitExceeded)
		}
		return nil, NewNetworkError(urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("Reference returned non-success status",
			"url", urlStr,
			"status", resp.StatusCode)
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxContentSize+1))
	if err != nil {
		return nil, NewNetworkError(urlStr, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > f.maxContentSize {
		return nil, NewNetworkError(urlStr, fmt.Errorf("%w (exceeds %d bytes)", ErrContentTooLarge, f.maxContentSize))
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// checkRedirect allows at most maxRedirects hops. via holds every request
// already sent, so len(via) is the number of the hop about to be followed.
func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > f.maxRedirects {
		return ErrRedirectLimitExceeded
	}
	if f.blockPrivate {
		if err := weburl.ValidateURL(req.URL.String()); err != nil {
			return fmt.Errorf("redirect blocked: %w", err)
		}
	}
	return nil
}
