package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/everstacklabs/modelfeed/internal/httpclient"
)

// catalogBody builds a {"data": [...]} response with n records.
func catalogBody(n int) []byte {
	type rec struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	records := make([]rec, n)
	for i := range records {
		records[i] = rec{ID: fmt.Sprintf("acme/model-%d", i), Name: fmt.Sprintf("Model %d", i)}
	}
	body, _ := json.Marshal(map[string]any{"data": records})
	return body
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.RateLimit = 1000
	cfg.MinViable = 10
	return cfg
}

func testClient() *httpclient.Client {
	return httpclient.New(httpclient.WithTimeout(5 * time.Second))
}

func TestAuthenticatedSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write(catalogBody(12))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = "test-key"

	records, err := newAuthenticated(cfg).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 12 {
		t.Errorf("got %d records, want 12", len(records))
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
}

func TestAuthenticatedFailsFastWithoutKey(t *testing.T) {
	cfg := testConfig("http://localhost:1") // would fail if dialed

	_, err := newAuthenticated(cfg).Fetch(context.Background())
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestPublicFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public strategy sent an Authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(catalogBody(15))
	}))
	defer srv.Close()

	records, err := newPublic(testConfig(srv.URL), testClient()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 15 {
		t.Errorf("got %d records, want 15", len(records))
	}
}

func TestPublicRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an api</html>"))
	}))
	defer srv.Close()

	_, err := newPublic(testConfig(srv.URL), testClient()).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for non-JSON content type")
	}
}

func TestPaginatedTriesParameterSpellings(t *testing.T) {
	// Only the "page_size" spelling yields a viable catalog.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_size") == "500" {
			w.Write(catalogBody(50))
			return
		}
		w.Write(catalogBody(2))
	}))
	defer srv.Close()

	records, err := newPaginated(testConfig(srv.URL), testClient()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 50 {
		t.Errorf("got %d records, want 50", len(records))
	}
}

func TestPaginatedExhaustsSpellings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(catalogBody(2))
	}))
	defer srv.Close()

	_, err := newPaginated(testConfig(srv.URL), testClient()).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error when no spelling clears the threshold")
	}
}

func TestProxiedFallsThroughRelays(t *testing.T) {
	var target string

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "relay down", http.StatusBadGateway)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		w.Write(catalogBody(20))
	}))
	defer working.Close()

	cfg := testConfig("https://example.test/api/v1")
	cfg.Proxies = []string{broken.URL + "/raw?url=", working.URL + "/raw?url="}

	records, err := newProxied(cfg, testClient()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 20 {
		t.Errorf("got %d records, want 20", len(records))
	}

	wantTarget := "https://example.test/api/v1/models"
	if got, _ := url.QueryUnescape(target); got != wantTarget && target != wantTarget {
		t.Errorf("proxied target = %q, want %q", target, wantTarget)
	}
}
