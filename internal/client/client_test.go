package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubdocs/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cli := New(Config{
		BaseURL:              srv.URL,
		FileBaseURL:          "https://files.example.com",
		MaxRetries:           3,
		RetryInitialInterval: time.Millisecond,
		HTTPClient:           srv.Client(),
	})
	return cli, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestCatalog_JoinsParallelFetches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listResponse{
			Data:  []model.Document{{ID: "d1", Name: "Budget"}},
			Total: 1,
		})
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Category{{ID: "c1", Name: "Finance", DocumentCount: 1}})
	})
	cli, _ := newTestClient(t, mux)

	cat, err := cli.Catalog(context.Background())

	require.NoError(t, err)
	assert.Len(t, cat.Documents, 1)
	assert.Len(t, cat.Categories, 1)
	assert.Equal(t, "Budget", cat.Documents[0].Name)
}

func TestCatalog_PrimaryFetchFailureFailsTheLoad(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Category{})
	})
	cli, _ := newTestClient(t, mux)

	_, err := cli.Catalog(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch documents")
}

func TestGetDocument_RetriesNotFoundThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, model.Document{ID: "d1", Name: "Budget"})
	})
	cli, _ := newTestClient(t, mux)

	doc, err := cli.GetDocument(context.Background(), "d1")

	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, int32(4), attempts.Load())
}

func TestGetDocument_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, model.Document{ID: "d1"})
	})
	cli, _ := newTestClient(t, mux)

	_, err := cli.GetDocument(context.Background(), "d1")

	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGetDocument_ClientErrorFailsImmediately(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	cli, _ := newTestClient(t, mux)

	_, err := cli.GetDocument(context.Background(), "d1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, int32(1), attempts.Load(), "4xx other than 404 must not be retried")
}

func TestGetDocument_ExhaustedRetriesReportUnavailable(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	cli, _ := newTestClient(t, mux)

	_, err := cli.GetDocument(context.Background(), "d1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(4), attempts.Load(), "maxRetries=3 means 4 total attempts")
}

func TestGetDocument_CancellationStopsRetries(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cli := New(Config{
		BaseURL:              srv.URL,
		MaxRetries:           50,
		RetryInitialInterval: 50 * time.Millisecond,
		HTTPClient:           srv.Client(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := cli.GetDocument(ctx, "d1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, attempts.Load(), int32(3), "no further retries once the caller cancels")
}

func TestGetDocument_BackoffDelaysGrowGeometrically(t *testing.T) {
	var (
		mu     sync.Mutex
		stamps []time.Time
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cli := New(Config{
		BaseURL:              srv.URL,
		MaxRetries:           3,
		RetryInitialInterval: 40 * time.Millisecond,
		HTTPClient:           srv.Client(),
	})

	_, err := cli.GetDocument(context.Background(), "d1")
	require.Error(t, err)
	require.Len(t, stamps, 4)

	// Delays follow initial * 1.5^n with no jitter: 40ms, 60ms, 90ms.
	expected := []time.Duration{40 * time.Millisecond, 60 * time.Millisecond, 90 * time.Millisecond}
	for i, want := range expected {
		got := stamps[i+1].Sub(stamps[i])
		assert.GreaterOrEqual(t, got, want, "delay %d too short", i)
		assert.Less(t, got, want*3, "delay %d unreasonably long", i)
	}
}

func TestPopularDocuments_FallsBackToLocalRanking(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/stats/popular", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	cli, _ := newTestClient(t, mux)

	fallback := []model.Document{
		{ID: "low", Views: 3, Downloads: 1},
		{ID: "high", Views: 10, Downloads: 5},
	}
	got := cli.PopularDocuments(context.Background(), 1, fallback)

	require.Len(t, got, 1)
	assert.Equal(t, "high", got[0].ID)
}

func TestPopularDocuments_PrefersStoreRanking(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/stats/popular", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		writeJSON(w, []model.Document{{ID: "from-store"}})
	})
	cli, _ := newTestClient(t, mux)

	got := cli.PopularDocuments(context.Background(), 2, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "from-store", got[0].ID)
}

func TestRecentDocuments_FallsBackToNewestFirst(t *testing.T) {
	cli := New(Config{BaseURL: "http://127.0.0.1:0", RetryInitialInterval: time.Millisecond})

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fallback := []model.Document{
		{ID: "older", CreatedAt: old},
		{ID: "newer", CreatedAt: old.AddDate(1, 0, 0)},
	}
	got := cli.RecentDocuments(context.Background(), 2, fallback)

	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].ID)
}

func TestTrack_FireAndForget(t *testing.T) {
	var views, downloads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/d1/view", func(w http.ResponseWriter, r *http.Request) {
		views.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/documents/d1/download", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	cli, _ := newTestClient(t, mux)

	cli.TrackView(context.Background(), "d1")
	cli.TrackDownload(context.Background(), "d1") // failure is swallowed

	assert.Equal(t, int32(1), views.Load())
	assert.Equal(t, int32(1), downloads.Load())
}

func TestResolveFileURL(t *testing.T) {
	cli := New(Config{FileBaseURL: "https://files.example.com/"})

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"bare key gets the base prefix", "documents/abc.pdf", "https://files.example.com/documents/abc.pdf"},
		{"leading slash collapses", "/documents/abc.pdf", "https://files.example.com/documents/abc.pdf"},
		{"absolute URL passes through", "https://cdn.example.org/x.pdf", "https://cdn.example.org/x.pdf"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ResolveFileURL(tt.ref))
		})
	}
}

func TestFileURLs_ResolvesBothKinds(t *testing.T) {
	cli := New(Config{FileBaseURL: "https://files.example.com"})
	doc := &model.Document{Files: []model.FileRef{
		{Kind: model.FileKindLegacy, Ref: "documents/a.pdf", Name: "a.pdf"},
		{Kind: model.FileKindURL, Ref: "https://cdn.example.org/b.pdf"},
	}}

	got := cli.FileURLs(doc)

	assert.Equal(t, []string{
		"https://files.example.com/documents/a.pdf",
		"https://cdn.example.org/b.pdf",
	}, got)
}
