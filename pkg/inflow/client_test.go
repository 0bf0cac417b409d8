package inflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"estimator-service/pkg/config"
	"estimator-service/prometheus"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "inflow_test"},
	})
	os.Exit(m.Run())
}

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&config.InFlowConfig{
		BaseURL:         server.URL,
		CompanyID:       "co-1",
		APIKey:          "test-key",
		AcceptVersion:   "2021-04-26",
		Timeout:         5 * time.Second,
		CacheTTL:        time.Minute,
		CacheMaxEntries: 16,
	}, zap.NewNop())
	return client, server
}

func TestGet_SetsAuthAndAcceptHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotPath string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))

	var out map[string]bool
	if err := client.Get(context.Background(), "/products", nil, GetOptions{}, &out); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if gotAccept != "application/json;version=2021-04-26" {
		t.Fatalf("Accept = %q, want pinned version header", gotAccept)
	}
	if gotPath != "/co-1/products" {
		t.Fatalf("path = %q, want company-scoped path", gotPath)
	}
}

func TestGet_CachesReads(t *testing.T) {
	var calls int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[{"categoryId":"c1","name":"Bulk"}]`))
	}))

	for i := 0; i < 3; i++ {
		if _, err := client.Categories(context.Background()); err != nil {
			t.Fatalf("Categories returned error: %v", err)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("upstream calls = %d, want 1", got)
	}
}

func TestGet_ForceRefreshBypassesCache(t *testing.T) {
	var calls int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"productId":"p-1","timestamp":"t1"}`))
	}))

	if _, err := client.Product(context.Background(), "p-1", false); err != nil {
		t.Fatalf("Product returned error: %v", err)
	}
	if _, err := client.Product(context.Background(), "p-1", true); err != nil {
		t.Fatalf("Product (force refresh) returned error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("upstream calls = %d, want 2", got)
	}
}

func TestGet_ForceRefreshDoesNotJoinInFlightFetch(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			w.Write([]byte(`{"productId":"p-1","timestamp":"t1"}`))
			return
		}
		w.Write([]byte(`{"productId":"p-1","timestamp":"t2"}`))
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := client.Product(context.Background(), "p-1", false); err != nil {
			t.Errorf("Product returned error: %v", err)
		}
	}()
	<-started

	// The plain read above is still blocked upstream. A forced read issued
	// now must make its own round trip rather than adopt that older flight.
	snapshot, err := client.Product(context.Background(), "p-1", true)
	if err != nil {
		t.Fatalf("Product (force refresh) returned error: %v", err)
	}
	if snapshot.Timestamp != "t2" {
		t.Fatalf("forced read token = %q, want %q from its own fetch", snapshot.Timestamp, "t2")
	}

	close(release)
	<-done

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("upstream calls = %d, want 2", got)
	}
}

func TestGet_CoalescesConcurrentReads(t *testing.T) {
	var calls int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Categories(context.Background()); err != nil {
				t.Errorf("Categories returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("upstream calls = %d, want 1", got)
	}
}

func TestGet_NonSuccessBecomesUpstreamError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))

	err := client.Get(context.Background(), "/products", nil, GetOptions{}, nil)

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upstream.Status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", upstream.Status)
	}
	if upstream.Body != "upstream exploded" {
		t.Fatalf("body = %q, want response body", upstream.Body)
	}
}

func TestGet_MalformedResponseBecomesUpstreamError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"productId": `))
	}))

	var out ProductSnapshot
	err := client.Get(context.Background(), "/products/p-1", nil, GetOptions{}, &out)

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError for malformed JSON", err)
	}
}

func TestProduct_NotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no such product"}`))
	}))

	_, err := client.Product(context.Background(), "p-404", false)

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.ID != "p-404" {
		t.Fatalf("id = %q, want p-404", notFound.ID)
	}
}

func TestPutProduct_BypassesCacheAndReturnsSnapshot(t *testing.T) {
	var gets, puts int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&gets, 1)
			w.Write([]byte(`{"productId":"p-1","timestamp":"t1"}`))
		case http.MethodPut:
			atomic.AddInt32(&puts, 1)
			w.Write([]byte(`{"productId":"p-1","timestamp":"t2"}`))
		}
	}))

	if _, err := client.Product(context.Background(), "p-1", false); err != nil {
		t.Fatalf("Product returned error: %v", err)
	}

	snapshot, err := client.PutProduct(context.Background(), ProductUpdate{ProductID: "p-1", Timestamp: "t1"})
	if err != nil {
		t.Fatalf("PutProduct returned error: %v", err)
	}
	if snapshot.Timestamp != "t2" {
		t.Fatalf("returned token = %q, want t2", snapshot.Timestamp)
	}
	if atomic.LoadInt32(&puts) != 1 {
		t.Fatalf("puts = %d, want 1", puts)
	}
}

func TestSearchProducts_EncodesSmartFilterAndPagination(t *testing.T) {
	var gotQuery url.Values
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))

	if _, err := client.SearchProducts(context.Background(), "body butter", "p-9", 25); err != nil {
		t.Fatalf("SearchProducts returned error: %v", err)
	}

	if gotQuery.Get("filter[smart]") != "body butter" {
		t.Fatalf("filter[smart] = %q, want %q", gotQuery.Get("filter[smart]"), "body butter")
	}
	if gotQuery.Get("after") != "p-9" {
		t.Fatalf("after = %q, want p-9", gotQuery.Get("after"))
	}
	if gotQuery.Get("count") != "25" {
		t.Fatalf("count = %q, want 25", gotQuery.Get("count"))
	}
}

func TestIsConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"http 409", &UpstreamError{Status: http.StatusConflict, Body: "conflict"}, true},
		{"marker text", &UpstreamError{Status: http.StatusBadRequest, Body: `{"error":"entity is Not The Most Recent Version"}`}, true},
		{"plain 500", &UpstreamError{Status: http.StatusInternalServerError, Body: "boom"}, false},
		{"not upstream", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		if got := IsConflict(tc.err); got != tc.want {
			t.Fatalf("%s: IsConflict = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReadCache_EvictsOldestWhenFull(t *testing.T) {
	cache := newReadCache(time.Minute, 2)

	cache.set("a", []byte("1"))
	cache.set("b", []byte("2"))
	cache.set("c", []byte("3"))

	if cache.len() != 2 {
		t.Fatalf("len = %d, want 2", cache.len())
	}
	if _, ok := cache.get("a"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := cache.get("c"); !ok {
		t.Fatal("newest entry should be present")
	}
}

func TestReadCache_ExpiresEntries(t *testing.T) {
	cache := newReadCache(time.Nanosecond, 16)

	cache.set("a", []byte("1"))
	time.Sleep(time.Millisecond)

	if _, ok := cache.get("a"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestReadCache_Invalidate(t *testing.T) {
	cache := newReadCache(time.Minute, 16)

	cache.set("a", []byte("1"))
	cache.invalidate("a")

	if _, ok := cache.get("a"); ok {
		t.Fatal("entry should have been invalidated")
	}
}
