package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/reqid"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/router"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/session"
)

func testRoutes(r *router.Router, _ *Infra) {
	r.Get("/remember", "remember", func(w http.ResponseWriter, r *http.Request) {
		_ = session.FromCtx(r.Context()).Set("seen", true)
		_, _ = io.WriteString(w, reqid.FromCtx(r.Context()))
	})
	r.Get("/boom", "boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
}

func TestHandler_GlobalStack(t *testing.T) {
	infra := NewTestInfra(t.TempDir())
	srv := httptest.NewServer(New(infra).Routes(testRoutes).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/remember")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(reqid.Header))
	assert.Equal(t, resp.Header.Get(reqid.Header), string(body), "handlers see the same request id")

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "fastbite_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "changed session sets its cookie")
	assert.True(t, cookie.HttpOnly)

	resp, err = http.Get(srv.URL + "/boom")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fastbite_http_requests_total")
}

func TestRouter_ListsRegisteredRoutes(t *testing.T) {
	r := New(NewTestInfra(t.TempDir())).Routes(testRoutes).Router()

	var names []string
	for _, rt := range r.Routes() {
		names = append(names, rt.Name)
	}
	assert.ElementsMatch(t, []string{"boom", "remember"}, names)
}

func TestServeListener_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(NewTestInfra(t.TempDir())).Routes(testRoutes).ServeListener(ctx, ln)
	}()

	url := "http://" + ln.Addr().String() + "/remember"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestSessionOptions(t *testing.T) {
	prevTTL, prevEnv := config.Get("SESSION_TTL", ""), config.Get("APP_ENV", "")
	t.Cleanup(func() {
		config.Set("SESSION_TTL", prevTTL)
		config.Set("APP_ENV", prevEnv)
	})

	config.Set("SESSION_TTL", "45m")
	config.Set("APP_ENV", "local")
	opts := SessionOptions()
	assert.Equal(t, 45*time.Minute, opts.TTL)
	assert.False(t, opts.Secure)

	config.Set("APP_ENV", "production")
	assert.True(t, SessionOptions().Secure, "production cookies are always Secure")
}

func TestInfraClose_NoDatabase(t *testing.T) {
	infra := NewTestInfra(t.TempDir())
	assert.NoError(t, infra.Close())
	assert.True(t, strings.HasPrefix(infra.Disk.URL("a.png"), "/storage/"))
}

func TestServeListener_RunsScheduledTasksUntilShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var runs atomic.Int32
	stopped := make(chan struct{})
	withTask := func(_ *router.Router, infra *Infra) {
		infra.Tasks.Interval(time.Hour).Name("blocker").Run(func(ctx context.Context) error {
			runs.Add(1)
			<-ctx.Done()
			close(stopped)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	a := New(NewTestInfra(t.TempDir())).Routes(withTask)
	go func() { done <- a.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	select {
	case <-stopped:
	default:
		t.Fatal("task still running after shutdown")
	}
	assert.Equal(t, int32(1), runs.Load(), "routes registered once")
}
