// Package client is the HTTP consumer side of the document store: it fetches
// the catalog that the discovery engines filter, sort and paginate locally.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pubdocs/internal/discovery"
	"pubdocs/internal/model"
)

const defaultMaxRetries = 5

// Config holds client settings. Zero values pick sensible defaults.
type Config struct {
	// BaseURL is the root of the document store API.
	BaseURL string
	// FileBaseURL is prefixed to bare file/thumbnail storage keys.
	FileBaseURL string
	// MaxRetries is the number of additional attempts after the first when
	// fetching a single document. Defaults to 5.
	MaxRetries int
	// RetryInitialInterval is the delay before the first retry. Defaults to
	// one second; tests inject a short interval.
	RetryInitialInterval time.Duration
	// HTTPClient overrides the default traced client.
	HTTPClient *http.Client
}

// Client is a read-mostly consumer of the document store API. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	baseURL      string
	fileBaseURL  string
	http         *http.Client
	maxRetries   int
	retryInitial time.Duration
}

// New constructs a Client. Outgoing requests are traced via otelhttp.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryInitial := cfg.RetryInitialInterval
	if retryInitial <= 0 {
		retryInitial = time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		fileBaseURL:  strings.TrimRight(cfg.FileBaseURL, "/"),
		http:         httpClient,
		maxRetries:   maxRetries,
		retryInitial: retryInitial,
	}
}

// listResponse mirrors the store's {data, total} collection envelope.
type listResponse struct {
	Data  []model.Document `json:"data"`
	Total int              `json:"total"`
}

// Documents fetches the full document collection.
func (c *Client) Documents(ctx context.Context) ([]model.Document, error) {
	var res listResponse
	if err := c.getJSON(ctx, "/documents", &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Categories fetches the full category collection.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := c.getJSON(ctx, "/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Catalog is the joined result of the two primary page-load fetches.
type Catalog struct {
	Documents  []model.Document
	Categories []model.Category
}

// Catalog fetches documents and categories in parallel and joins after both
// complete. A failure in either primary fetch fails the load.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	var (
		cat              Catalog
		docsErr, catsErr error
		wg               sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cat.Documents, docsErr = c.Documents(ctx)
	}()
	go func() {
		defer wg.Done()
		cat.Categories, catsErr = c.Categories(ctx)
	}()
	wg.Wait()
	if docsErr != nil {
		return nil, fmt.Errorf("fetch documents: %w", docsErr)
	}
	if catsErr != nil {
		return nil, fmt.Errorf("fetch categories: %w", catsErr)
	}
	return &cat, nil
}

// PopularDocuments returns the store's precomputed popularity ranking. The
// endpoint is optional: on any failure the ranking is derived locally from
// the fallback collection and the failure is never surfaced.
func (c *Client) PopularDocuments(ctx context.Context, limit int, fallback []model.Document) []model.Document {
	if docs, err := c.statsRanking(ctx, "popular", limit); err == nil {
		return docs
	}
	return truncate(discovery.Sort(fallback, discovery.SortPopular), limit)
}

// RecentDocuments returns the store's precomputed recency ranking, falling
// back to a local newest-first sort on any failure.
func (c *Client) RecentDocuments(ctx context.Context, limit int, fallback []model.Document) []model.Document {
	if docs, err := c.statsRanking(ctx, "recent", limit); err == nil {
		return docs
	}
	return truncate(discovery.Sort(fallback, discovery.SortNewest), limit)
}

func (c *Client) statsRanking(ctx context.Context, kind string, limit int) ([]model.Document, error) {
	var docs []model.Document
	path := fmt.Sprintf("/documents/stats/%s?limit=%d", kind, limit)
	if err := c.getJSON(ctx, path, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func truncate(docs []model.Document, limit int) []model.Document {
	if limit > 0 && len(docs) > limit {
		return docs[:limit]
	}
	return docs
}

// TrackView records a view. Fire-and-forget: failures are swallowed, never
// surfaced, never retried.
func (c *Client) TrackView(ctx context.Context, id string) {
	_ = c.post(ctx, "/documents/"+url.PathEscape(id)+"/view")
}

// TrackDownload records a download. Fire-and-forget like TrackView.
func (c *Client) TrackDownload(ctx context.Context, id string) {
	_ = c.post(ctx, "/documents/"+url.PathEscape(id)+"/download")
}

// ResolveFileURL turns a file or thumbnail reference into a fetchable URL:
// references that already carry a URI scheme pass through verbatim, bare
// storage keys are prefixed with the configured file base URL.
func (c *Client) ResolveFileURL(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return ref
	}
	return c.fileBaseURL + "/" + strings.TrimLeft(ref, "/")
}

// FileURLs resolves every file reference on a document.
func (c *Client) FileURLs(d *model.Document) []string {
	urls := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		urls = append(urls, c.ResolveFileURL(f.Ref))
	}
	return urls
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
