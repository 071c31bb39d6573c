package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/breeds-proxy/internal/testutil"
	"github.com/Sternrassler/breeds-proxy/pkg/breed"
	"github.com/Sternrassler/breeds-proxy/pkg/cache"
	"github.com/Sternrassler/breeds-proxy/pkg/client"
	"github.com/Sternrassler/breeds-proxy/pkg/pagination"
)

const beagleCatalog = `[
	{"id": 1, "name": "Beagle", "image": {"url": "beagle.jpg"}},
	{"id": 2, "name": "Bulldog", "image": {"url": "bulldog.jpg"}}
]`

// testClock is a manually advanced clock shared with the cache.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *Service
	mock  *testutil.MockUpstream
	store *cache.Store
	clock *testClock
}

// newFixture wires a real client and store against a mock upstream.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	mock := testutil.NewMockUpstream()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.Retry = client.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}

	clock := &testClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	store := cache.NewStore(cache.Config{DefaultTTL: 300 * time.Second}, cache.WithClock(clock.Now))
	t.Cleanup(func() { store.Close() })

	svc, err := New(Config{Fetcher: c, Cache: store})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return &fixture{svc: svc, mock: mock, store: store, clock: clock}
}

func TestNew_Validation(t *testing.T) {
	store := cache.NewStore(cache.Config{})
	defer store.Close()
	fetcher := &stubFetcher{}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Fetcher: fetcher, Cache: store}},
		{name: "missing fetcher", cfg: Config{Cache: store}, wantErr: true},
		{name: "missing cache", cfg: Config{Fetcher: fetcher}, wantErr: true},
		{name: "negative ttl", cfg: Config{Fetcher: fetcher, Cache: store, TTL: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBreeds_SearchFilter(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(beagleCatalog)

	got, err := f.svc.GetBreeds(context.Background(), 1, 10, "beag")
	if err != nil {
		t.Fatalf("GetBreeds failed: %v", err)
	}

	if got.Page != 1 || got.Limit != 10 || got.Total != 1 {
		t.Errorf("page/limit/total = %d/%d/%d, want 1/10/1", got.Page, got.Limit, got.Total)
	}
	if len(got.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.ID.String() != "1" || item.Name != "Beagle" {
		t.Errorf("item = %+v, want Beagle with id 1", item)
	}
	if item.Image == nil || *item.Image != "beagle.jpg" {
		t.Errorf("Image = %v, want beagle.jpg", item.Image)
	}
}

func TestGetBreeds_Pages(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		search    string
		wantTotal int
		wantNames []string
	}{
		{name: "first page", page: 1, limit: 2, wantTotal: 5, wantNames: []string{"Affenpinscher", "Afghan Hound"}},
		{name: "last partial page", page: 3, limit: 2, wantTotal: 5, wantNames: []string{"Bulldog"}},
		{name: "past the end", page: 4, limit: 2, wantTotal: 5, wantNames: nil},
		{name: "page far past the end", page: math.MaxInt64/4 + 2, limit: 4, wantTotal: 5, wantNames: nil},
		{name: "case-insensitive search", page: 1, limit: 12, search: "AF", wantTotal: 3, wantNames: []string{"Affenpinscher", "Afghan Hound", "African Hunting Dog"}},
		{name: "no match", page: 1, limit: 12, search: "poodle", wantTotal: 0, wantNames: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mock.SetCatalog(testutil.SampleCatalog)

			got, err := f.svc.GetBreeds(context.Background(), tt.page, tt.limit, tt.search)
			if err != nil {
				t.Fatalf("GetBreeds failed: %v", err)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.Items == nil {
				t.Error("Items is nil, want empty slice")
			}
			if len(got.Items) != len(tt.wantNames) {
				t.Fatalf("len(Items) = %d, want %d", len(got.Items), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if got.Items[i].Name != name {
					t.Errorf("Items[%d].Name = %q, want %q", i, got.Items[i].Name, name)
				}
			}
		})
	}
}

func TestGetBreeds_InvalidParams(t *testing.T) {
	f := newFixture(t)

	for _, p := range [][2]int{{0, 10}, {1, 0}, {-1, -1}} {
		_, err := f.svc.GetBreeds(context.Background(), p[0], p[1], "")
		if !errors.Is(err, pagination.ErrInvalidParams) {
			t.Errorf("GetBreeds(%d, %d) error = %v, want ErrInvalidParams", p[0], p[1], err)
		}
	}
	if f.mock.RequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0 for invalid params", f.mock.RequestCount())
	}
}

func TestGetBreeds_CachedWithinTTL(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(beagleCatalog)
	ctx := context.Background()

	first, err := f.svc.GetBreeds(ctx, 1, 10, "")
	if err != nil {
		t.Fatalf("first GetBreeds failed: %v", err)
	}
	second, err := f.svc.GetBreeds(ctx, 1, 10, "")
	if err != nil {
		t.Fatalf("second GetBreeds failed: %v", err)
	}

	if f.mock.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want exactly 1 upstream fetch", f.mock.RequestCount())
	}
	if first.Total != second.Total || len(first.Items) != len(second.Items) {
		t.Errorf("cached result %+v differs from computed %+v", second, first)
	}

	// Mutating a returned result must not affect later reads
	second.Items[0].Name = "mutated"
	third, _ := f.svc.GetBreeds(ctx, 1, 10, "")
	if third.Items[0].Name != "Beagle" {
		t.Errorf("cached item name = %q, want Beagle", third.Items[0].Name)
	}
}

func TestGetBreeds_DistinctKeys(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(beagleCatalog)
	ctx := context.Background()

	calls := []struct {
		page, limit int
		search      string
	}{
		{1, 10, ""},
		{1, 10, "beag"},
		{2, 10, ""},
		{1, 5, ""},
	}
	for _, c := range calls {
		if _, err := f.svc.GetBreeds(ctx, c.page, c.limit, c.search); err != nil {
			t.Fatalf("GetBreeds failed: %v", err)
		}
	}

	if f.mock.RequestCount() != len(calls) {
		t.Errorf("RequestCount = %d, want %d", f.mock.RequestCount(), len(calls))
	}
}

func TestGetBreeds_RefetchAfterExpiry(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(beagleCatalog)
	ctx := context.Background()

	if _, err := f.svc.GetBreeds(ctx, 1, 10, ""); err != nil {
		t.Fatalf("GetBreeds failed: %v", err)
	}

	f.mock.SetCatalog(`[{"id": 3, "name": "Boxer"}]`)
	f.clock.Advance(300 * time.Second)

	got, err := f.svc.GetBreeds(ctx, 1, 10, "")
	if err != nil {
		t.Fatalf("GetBreeds failed: %v", err)
	}
	if f.mock.RequestCount() != 2 {
		t.Errorf("RequestCount = %d, want 2 after expiry", f.mock.RequestCount())
	}
	if got.Total != 1 || got.Items[0].Name != "Boxer" {
		t.Errorf("got %+v, want the refreshed catalog", got)
	}
}

func TestGetBreeds_UpstreamUnavailable(t *testing.T) {
	f := newFixture(t)
	f.mock.SetResponse(testutil.NewServerErrorResponse())

	_, err := f.svc.GetBreeds(context.Background(), 1, 10, "")
	if !errors.Is(err, ErrBreedsFetchFailed) {
		t.Errorf("Expected ErrBreedsFetchFailed, got %v", err)
	}
	if !errors.Is(err, client.ErrUpstreamUnavailable) {
		t.Errorf("Expected wrapped ErrUpstreamUnavailable, got %v", err)
	}
	if f.mock.RequestCount() != 3 {
		t.Errorf("RequestCount = %d, want exactly 3 attempts", f.mock.RequestCount())
	}

	// Failures are not cached
	f.mock.SetCatalog(beagleCatalog)
	if _, err := f.svc.GetBreeds(context.Background(), 1, 10, ""); err != nil {
		t.Errorf("GetBreeds after recovery failed: %v", err)
	}
}

func TestGetBreedByID_Found(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(`[{"id": 1, "name": "Beagle", "image": {"url": "beagle.jpg"}}]`)

	got, err := f.svc.GetBreedByID(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetBreedByID failed: %v", err)
	}

	want := breed.Breed{
		ID:          breed.NumericID(1),
		Name:        "Beagle",
		Origin:      "Inconnu",
		Height:      "N/A",
		LifeSpan:    "N/A",
		Temperament: "N/A",
		Image:       breed.Str("beagle.jpg"),
	}
	if got.ID != want.ID || got.Name != want.Name || got.Origin != want.Origin ||
		got.Height != want.Height || got.LifeSpan != want.LifeSpan || got.Temperament != want.Temperament {
		t.Errorf("GetBreedByID = %+v, want %+v", got, want)
	}
	if got.Image == nil || *got.Image != *want.Image {
		t.Errorf("Image = %v, want %q", got.Image, *want.Image)
	}
}

func TestGetBreedByID_NotFound(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(`[]`)
	ctx := context.Background()

	_, err := f.svc.GetBreedByID(ctx, "999")
	if !errors.Is(err, breed.ErrNotFound) {
		t.Fatalf("Expected breed.ErrNotFound, got %v", err)
	}

	// Not-found results are not cached: every call goes upstream
	_, err = f.svc.GetBreedByID(ctx, "999")
	if !errors.Is(err, breed.ErrNotFound) {
		t.Fatalf("Expected breed.ErrNotFound, got %v", err)
	}
	if f.mock.RequestCount() != 2 {
		t.Errorf("RequestCount = %d, want 2", f.mock.RequestCount())
	}
}

func TestGetBreedByID_Cached(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(beagleCatalog)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := f.svc.GetBreedByID(ctx, "2")
		if err != nil {
			t.Fatalf("GetBreedByID failed: %v", err)
		}
		if got.Name != "Bulldog" {
			t.Errorf("Name = %q, want Bulldog", got.Name)
		}
	}
	if f.mock.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1", f.mock.RequestCount())
	}
}

func TestGetBreedByID_FetchFailed(t *testing.T) {
	f := newFixture(t)
	f.mock.SetResponse(testutil.NewUnauthorizedResponse())

	_, err := f.svc.GetBreedByID(context.Background(), "1")
	if !errors.Is(err, ErrBreedsFetchFailed) {
		t.Errorf("Expected ErrBreedsFetchFailed, got %v", err)
	}
	if errors.Is(err, breed.ErrNotFound) {
		t.Error("fetch failure must not be reported as not found")
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(beagleCatalog)
	ctx := context.Background()

	if _, err := f.svc.GetBreeds(ctx, 1, 12, ""); err != nil {
		t.Fatalf("GetBreeds failed: %v", err)
	}
	if _, err := f.svc.GetBreedByID(ctx, "1"); err != nil {
		t.Fatalf("GetBreedByID failed: %v", err)
	}

	if f.mock.RequestCount() != 2 {
		t.Errorf("RequestCount = %d, want 2 (listing and lookup cached separately)", f.mock.RequestCount())
	}
	if f.store.Len() != 2 {
		t.Errorf("store.Len = %d, want 2", f.store.Len())
	}
}

// stubFetcher returns canned records or an error.
type stubFetcher struct {
	records []breed.Raw
	err     error
	calls   int
}

func (s *stubFetcher) FetchAllBreeds(context.Context) ([]breed.Raw, error) {
	s.calls++
	return s.records, s.err
}

// failingCache misses every read and rejects every write.
type failingCache struct{}

func (failingCache) Get(context.Context, cache.CacheKey) (*cache.Entry, error) {
	return nil, cache.ErrCacheMiss
}

func (failingCache) Set(context.Context, cache.CacheKey, []byte, time.Duration) error {
	return errors.New("cache unavailable")
}

func TestCacheWriteFailureStillReturnsResult(t *testing.T) {
	fetcher := &stubFetcher{records: []breed.Raw{{ID: breed.NumericID(1), Name: breed.Str("Beagle")}}}

	svc, err := New(Config{Fetcher: fetcher, Cache: failingCache{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := svc.GetBreedByID(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetBreedByID failed: %v", err)
	}
	if got.Name != "Beagle" {
		t.Errorf("Name = %q, want Beagle", got.Name)
	}
}

func TestCorruptCacheEntryIsRecomputed(t *testing.T) {
	store := cache.NewStore(cache.Config{})
	defer store.Close()
	fetcher := &stubFetcher{records: []breed.Raw{{ID: breed.StringID("abc"), Name: breed.Str("Beagle")}}}

	svc, err := New(Config{Fetcher: fetcher, Cache: store})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Set(ctx, cache.BreedKey("abc"), []byte(`{broken`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := svc.GetBreedByID(ctx, "abc")
	if err != nil {
		t.Fatalf("GetBreedByID failed: %v", err)
	}
	if got.Name != "Beagle" || fetcher.calls != 1 {
		t.Errorf("got %+v after %d fetches, want Beagle after 1", got, fetcher.calls)
	}
}
