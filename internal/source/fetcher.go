// Package source fetches speech and manifesto pages for classification,
// honoring robots.txt and per-host pacing.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/util"
	"github.com/ppiankov/politikcred/internal/worker"
	log "github.com/sirupsen/logrus"
)

// ErrDisallowed is returned when robots.txt forbids the URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Page is a fetched document reduced to its visible text
type Page struct {
	URL         string    `json:"url"`
	FinalURL    string    `json:"final_url"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Fetcher retrieves pages with a bounded body size
type Fetcher struct {
	httpClient *http.Client
	robots     *RobotsChecker
	limiter    *worker.Limiter
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a fetcher from the HTTP configuration. Requests to one
// host are paced to one per second plus any crawl delay robots.txt asks for.
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	client := util.NewHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Fetcher{
		httpClient: client,
		robots:     NewRobotsChecker(client, cfg.UserAgent),
		limiter:    worker.NewLimiter(1, 1),
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
	}
}

// Fetch retrieves rawURL and extracts its visible text. HTML is reduced with
// VisibleText; text/plain is returned as is.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
	}

	host, err := worker.HostKey(rawURL)
	if err != nil {
		return nil, err
	}
	if err := f.limiter.WaitWithDelay(ctx, host, crawlDelay); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	page := &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now().UTC(),
	}

	mediaType, _, _ := mime.ParseMediaType(page.ContentType)
	switch mediaType {
	case "text/plain":
		page.Text = string(body)
	case "text/html", "application/xhtml+xml", "":
		page.Title, page.Text, err = VisibleText(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported content type %q", page.ContentType)
	}

	log.WithFields(log.Fields{
		"url":   page.FinalURL,
		"bytes": len(body),
	}).Debug("Source page fetched")
	return page, nil
}
