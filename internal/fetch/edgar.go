// Package fetch downloads filing documents from EDGAR. It is polite by
// construction: rate-limited per host, robots.txt aware, identified by a
// contact user agent, and backed by a response cache so re-runs don't
// touch the network.
package fetch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/renwave/tashare/internal/cache"
	"github.com/renwave/tashare/internal/model"
	"github.com/renwave/tashare/internal/worker"
)

// Filing identifies one document to download. Accession follows the
// daily-index convention: the first eight digits are the filing date.
type Filing struct {
	CIK       string
	Accession string
	URL       string
}

// DocumentName returns the on-disk name the ingest side expects
func (f Filing) DocumentName() string {
	return f.CIK + "_" + f.Accession + ".htm"
}

// Client fetches documents over HTTP with retries and caching
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	retryDelay time.Duration
	limiter    *worker.Limiter
	robots     *RobotsChecker
	store      cache.Cache
}

// NewClient creates a fetch client. The cache may be nil, in which case
// every fetch hits the network.
func NewClient(httpCfg model.HTTPConfig, rateCfg model.RateLimitConfig, store cache.Cache) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: httpCfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  httpCfg.UserAgent,
		maxBytes:   httpCfg.MaxBodyBytes,
		maxRetries: httpCfg.MaxRetries,
		retryDelay: httpCfg.RetryDelay,
		limiter:    worker.NewLimiter(rateCfg.RequestsPerSecond, rateCfg.Burst),
		robots:     NewRobotsChecker(httpCfg.UserAgent, httpCfg.Timeout),
		store:      store,
	}
}

// Fetch retrieves one URL, consulting the cache first. Responses are
// retried on 429 and 5xx with exponential backoff; other failures are
// returned immediately.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL)
	if c.store != nil {
		if body, ok := c.store.Get(key); ok {
			return body, nil
		}
	}

	allowed, crawlDelay, err := c.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("robots.txt: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	var body []byte
	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		if err := c.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, err
		}

		var retryable bool
		body, retryable, err = c.get(ctx, rawURL)
		if err == nil {
			break
		}
		if !retryable || attempt >= c.maxRetries {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	if c.store != nil {
		if err := c.store.Set(key, body, 0); err != nil {
			return nil, fmt.Errorf("cache response: %w", err)
		}
	}
	return body, nil
}

// get performs a single HTTP round trip. The second return value reports
// whether the failure is worth retrying.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, true, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, false, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, false, fmt.Errorf("fetch %s: body exceeds %d bytes", rawURL, c.maxBytes)
	}
	return body, false, nil
}

// DownloadStats summarizes a batch download
type DownloadStats struct {
	Fetched int
	Cached  int // already on disk, not re-fetched
	Failed  int
	Errors  []string
}

type downloadJob struct {
	client *Client
	filing Filing
	dir    string
}

type downloadResult struct {
	filing  Filing
	skipped bool
	err     error
}

func (r downloadResult) GetError() error { return r.err }

func (j *downloadJob) Execute(ctx context.Context) worker.Result {
	path := filepath.Join(j.dir, j.filing.DocumentName())
	if _, err := os.Stat(path); err == nil {
		return downloadResult{filing: j.filing, skipped: true}
	}

	body, err := j.client.Fetch(ctx, j.filing.URL)
	if err != nil {
		return downloadResult{filing: j.filing, err: err}
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return downloadResult{filing: j.filing, err: fmt.Errorf("write %s: %w", path, err)}
	}
	return downloadResult{filing: j.filing}
}

// DownloadAll fetches every filing into dir, naming files so the ingest
// side can recover subject and date. Documents already present are left
// alone. Individual failures are collected, not fatal.
func (c *Client) DownloadAll(ctx context.Context, filings []Filing, dir string, workers int) (*DownloadStats, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	jobs := make([]worker.Job, len(filings))
	for i, f := range filings {
		jobs[i] = &downloadJob{client: c, filing: f, dir: dir}
	}

	stats := &DownloadStats{}
	for _, res := range worker.NewPool(workers).Process(ctx, jobs) {
		dr := res.(downloadResult)
		switch {
		case dr.err != nil:
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", dr.filing.DocumentName(), dr.err))
		case dr.skipped:
			stats.Cached++
		default:
			stats.Fetched++
		}
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// ArchiveURL builds the EDGAR archive URL for a raw accession number
// (with dashes, e.g. 0001234567-21-000123).
func ArchiveURL(cik, rawAccession string) string {
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s.txt",
		strings.TrimLeft(cik, "0"), rawAccession)
}

// ReadFilingsCSV reads a filing list with a cik,accession,url header,
// the format the fetch command consumes.
func ReadFilingsCSV(path string) ([]Filing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filings list: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"cik", "accession", "url"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("filings list missing column %q", required)
		}
	}

	var filings []Filing
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read filings list: %w", err)
		}
		filings = append(filings, Filing{
			CIK:       strings.TrimSpace(record[col["cik"]]),
			Accession: strings.TrimSpace(record[col["accession"]]),
			URL:       strings.TrimSpace(record[col["url"]]),
		})
	}
	return filings, nil
}
