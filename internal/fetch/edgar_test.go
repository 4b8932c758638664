package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/renwave/tashare/internal/cache"
	"github.com/renwave/tashare/internal/model"
)

func testConfig() (model.HTTPConfig, model.RateLimitConfig) {
	return model.HTTPConfig{
			Timeout:      5 * time.Second,
			UserAgent:    "tashare-test/0.1",
			MaxBodyBytes: 1 << 20,
			MaxRetries:   3,
			RetryDelay:   time.Millisecond,
		}, model.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             100,
		}
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "tashare-test/0.1" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte("<html>transfer agent</html>"))
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	c := NewClient(httpCfg, rateCfg, nil)

	body, err := c.Fetch(context.Background(), srv.URL+"/doc.htm")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(body), "transfer agent") {
		t.Errorf("body = %q", body)
	}
}

func TestClientFetchRetriesOn429(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	c := NewClient(httpCfg, rateCfg, nil)

	body, err := c.Fetch(context.Background(), srv.URL+"/doc.htm")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestClientFetchGivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	httpCfg.MaxRetries = 1
	c := NewClient(httpCfg, rateCfg, nil)

	if _, err := c.Fetch(context.Background(), srv.URL+"/doc.htm"); err == nil {
		t.Error("expected error after exhausting retries")
	}
}

func TestClientFetchDoesNotRetry404(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	c := NewClient(httpCfg, rateCfg, nil)

	if _, err := c.Fetch(context.Background(), srv.URL+"/gone.htm"); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1 (no retry on 404)", got)
	}
}

func TestClientFetchRespectsRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		w.Write([]byte("should not be reachable"))
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	c := NewClient(httpCfg, rateCfg, nil)

	if _, err := c.Fetch(context.Background(), srv.URL+"/private/doc.htm"); err == nil {
		t.Error("expected robots.txt denial")
	}
	if _, err := c.Fetch(context.Background(), srv.URL+"/public/doc.htm"); err != nil {
		t.Errorf("allowed path failed: %v", err)
	}
}

func TestClientFetchUsesCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	c := NewClient(httpCfg, rateCfg, cache.NewMemoryCache(time.Hour, time.Hour))

	url := srv.URL + "/doc.htm"
	for i := 0; i < 3; i++ {
		body, err := c.Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		if string(body) != "cached body" {
			t.Errorf("body = %q", body)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestClientFetchRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	httpCfg, rateCfg := testConfig()
	httpCfg.MaxBodyBytes = 1024
	c := NewClient(httpCfg, rateCfg, nil)

	if _, err := c.Fetch(context.Background(), srv.URL+"/huge.htm"); err == nil {
		t.Error("expected oversize rejection")
	}
}

func TestDownloadAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("doc for " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()

	// One document is already on disk and must not be re-fetched.
	existing := Filing{CIK: "0000001", Accession: "20210315-001"}
	if err := os.WriteFile(filepath.Join(dir, existing.DocumentName()), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	filings := []Filing{
		existing,
		{CIK: "0000002", Accession: "20220110-002", URL: srv.URL + "/a.htm"},
		{CIK: "0000003", Accession: "20230601-003", URL: srv.URL + "/missing.htm"},
	}
	filings[0].URL = srv.URL + "/never.htm"

	httpCfg, rateCfg := testConfig()
	c := NewClient(httpCfg, rateCfg, nil)

	stats, err := c.DownloadAll(context.Background(), filings, dir, 2)
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if stats.Fetched != 1 || stats.Cached != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}

	data, err := os.ReadFile(filepath.Join(dir, "0000002_20220110-002.htm"))
	if err != nil {
		t.Fatalf("downloaded file: %v", err)
	}
	if !strings.Contains(string(data), "/a.htm") {
		t.Errorf("content = %q", data)
	}

	// The pre-existing file was left untouched.
	data, _ = os.ReadFile(filepath.Join(dir, existing.DocumentName()))
	if string(data) != "old" {
		t.Errorf("existing file overwritten: %q", data)
	}
}

func TestArchiveURL(t *testing.T) {
	got := ArchiveURL("0000320193", "0001193125-21-000123")
	want := "https://www.sec.gov/Archives/edgar/data/320193/0001193125-21-000123.txt"
	if got != want {
		t.Errorf("ArchiveURL = %q, want %q", got, want)
	}
}

func TestReadFilingsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filings.csv")
	content := "cik,accession,url\n0000001,20210315-001,https://www.sec.gov/a.txt\n0000002,20220110-002,https://www.sec.gov/b.txt\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	filings, err := ReadFilingsCSV(path)
	if err != nil {
		t.Fatalf("ReadFilingsCSV: %v", err)
	}
	if len(filings) != 2 {
		t.Fatalf("filings = %d, want 2", len(filings))
	}
	if filings[0].CIK != "0000001" || filings[0].Accession != "20210315-001" {
		t.Errorf("filings[0] = %+v", filings[0])
	}

	// Missing columns are a hard error.
	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("cik,date\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFilingsCSV(bad); err == nil {
		t.Error("expected error for missing columns")
	}
}
