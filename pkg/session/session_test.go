package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/cache"
)

func backends(t *testing.T) map[string]cache.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]cache.Cache{
		"memory": cache.NewMemory(),
		"redis":  cache.NewRedis(rdb),
	}
}

func counter(backend cache.Cache) http.Handler {
	return Middleware(backend, DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromCtx(r.Context())
		var n int
		_, _ = sess.Decode("n", &n)
		n++
		_ = sess.Set("n", n)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte{byte('0' + n)})
	}))
}

func TestMiddlewareRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			h := counter(backend)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, "1", rec.Body.String())
			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "fastbite_session", cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookies[0])
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, "2", rec.Body.String())
		})
	}
}

func TestUnknownCookieGetsFreshID(t *testing.T) {
	h := counter(cache.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "fastbite_session", Value: "attacker-chosen"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "attacker-chosen", cookies[0].Value)
	assert.Equal(t, "1", rec.Body.String())
}

func TestUnchangedSessionSetsNoCookie(t *testing.T) {
	h := Middleware(cache.NewMemory(), DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromCtx(r.Context())
		assert.True(t, sess.IsNew())
		assert.False(t, sess.Changed())
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Result().Cookies())
}

func TestSavedWithoutWrite(t *testing.T) {
	backend := cache.NewMemory()
	h := Middleware(backend, DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = FromCtx(r.Context()).Set("k", "v")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestInvalidateRotatesID(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	s := NewMemorySession(backend)
	require.NoError(t, s.Set("user", "ana"))
	require.NoError(t, s.Save(ctx, httptest.NewRecorder()))
	old := s.ID()

	s.Invalidate(ctx)
	assert.NotEqual(t, old, s.ID())
	_, ok := s.GetString("user")
	assert.False(t, ok)

	var data map[string]any
	assert.ErrorIs(t, backend.Get(ctx, storageKey(old), &data), cache.ErrMiss)
}

func TestFlash(t *testing.T) {
	s := NewMemorySession(cache.NewMemory())
	require.NoError(t, s.Flash("error", "fallo"))
	v, ok := s.GetFlash("error")
	assert.True(t, ok)
	assert.Equal(t, "fallo", v)
	_, ok = s.GetFlash("error")
	assert.False(t, ok)
}
