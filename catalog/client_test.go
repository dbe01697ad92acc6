package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andrewpaige1/brickstat-api/apierr"
)

type fakeCatalog struct {
	themeHits atomic.Int32
	lastAuth  atomic.Value
}

func (f *fakeCatalog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sets/{setNum}/", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth.Store(r.Header.Get("Authorization"))
		switch r.PathValue("setNum") {
		case "75192-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"set_num":"75192-1","name":"Millennium Falcon","year":2017,"theme_id":171,"num_parts":7541,"set_img_url":"https://cdn.rebrickable.com/media/sets/75192-1.jpg"}`))
		case "boom-1":
			http.Error(w, "upstream exploded", http.StatusServiceUnavailable)
		case "garbled-1":
			_, _ = w.Write([]byte(`{not json`))
		default:
			http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		}
	})
	mux.HandleFunc("GET /themes/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.themeHits.Add(1)
		switch r.PathValue("id") {
		case "171":
			time.Sleep(20 * time.Millisecond)
			_, _ = w.Write([]byte(`{"id":171,"parent_id":158,"name":"Ultimate Collector Series"}`))
		case "172":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"id":172,"parent_id":158,"name":"Star Wars"}`))
		case "500":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		}
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeCatalog) {
	t.Helper()
	fake := &fakeCatalog{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL, APIKey: "test-key", Timeout: time.Second}, zap.NewNop())
	return c, fake
}

func TestFetchSet(t *testing.T) {
	c, fake := newTestClient(t)

	s, err := c.FetchSet(context.Background(), "75192-1")
	require.NoError(t, err)
	assert.Equal(t, "Millennium Falcon", s.Name)
	assert.Equal(t, 2017, s.Year)
	assert.Equal(t, 7541, s.NumParts)
	require.NotNil(t, s.ThemeID)
	assert.Equal(t, 171, *s.ThemeID)
	assert.Equal(t, "key test-key", fake.lastAuth.Load())
}

func TestFetchSet_NotFound(t *testing.T) {
	c, _ := newTestClient(t)

	s, err := c.FetchSet(context.Background(), "00000-0")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestFetchSet_UpstreamFailure(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.FetchSet(context.Background(), "boom-1")
	var ue *apierr.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)

	_, err = c.FetchSet(context.Background(), "garbled-1")
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, apierr.Status(err))
}

func TestFetchSet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL, APIKey: "k", Timeout: 20 * time.Millisecond}, zap.NewNop())

	_, err := c.FetchSet(context.Background(), "75192-1")
	var ue *apierr.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.Status)
}

func TestFetchTheme_Cached(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	first, err := c.FetchTheme(ctx, 171)
	require.NoError(t, err)
	assert.Equal(t, "Ultimate Collector Series", first.Name)

	second, err := c.FetchTheme(ctx, 171)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fake.themeHits.Load())
}

func TestFetchTheme_ConcurrentMissesShareOneCall(t *testing.T) {
	c, fake := newTestClient(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			theme, err := c.FetchTheme(context.Background(), 171)
			assert.NoError(t, err)
			assert.Equal(t, 171, theme.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fake.themeHits.Load())
	assert.Equal(t, 1, c.CachedThemes())
}

func TestFetchTheme_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c, fake := newTestClient(t)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.FetchTheme(leaderCtx, 172)
		leaderErr <- err
	}()

	time.Sleep(10 * time.Millisecond)
	type result struct {
		theme *Theme
		err   error
	}
	follower := make(chan result, 1)
	go func() {
		theme, err := c.FetchTheme(context.Background(), 172)
		follower <- result{theme, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	got := <-follower
	require.NoError(t, got.err)
	require.NotNil(t, got.theme)
	assert.Equal(t, "Star Wars", got.theme.Name)
	assert.Equal(t, int32(1), fake.themeHits.Load())
	assert.Equal(t, 1, c.CachedThemes())
}

func TestFetchTheme_NotFoundIsAbsent(t *testing.T) {
	c, fake := newTestClient(t)

	theme, err := c.FetchTheme(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, theme)

	theme, err = c.FetchTheme(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, theme)
	assert.Equal(t, int32(1), fake.themeHits.Load())
}

func TestFetchTheme_ErrorsAreNotCached(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.FetchTheme(context.Background(), 500)
	assert.Error(t, err)
	_, err = c.FetchTheme(context.Background(), 500)
	assert.Error(t, err)

	assert.Equal(t, int32(2), fake.themeHits.Load())
	assert.Zero(t, c.CachedThemes())
}

func TestClient_RateLimited(t *testing.T) {
	fake := &fakeCatalog{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL, APIKey: "k", RPS: 0.001, Burst: 1}, zap.NewNop())

	_, err := c.FetchSet(context.Background(), "75192-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FetchSet(ctx, "75192-1")
	var ue *apierr.UpstreamError
	assert.ErrorAs(t, err, &ue)
}
