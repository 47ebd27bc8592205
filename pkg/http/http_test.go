package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fbhttp "github.com/jhonlemus05/FastBite-Delivery/pkg/http"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/reqid"
)

func TestSend_JSONBodyHeadersAndRequestID(t *testing.T) {
	var got struct {
		method, auth, ct, rid string
		body                  map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.auth = r.Header.Get("Authorization")
		got.ct = r.Header.Get("Content-Type")
		got.rid = r.Header.Get(reqid.Header)
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"_id":"o1"}`)
	}))
	defer srv.Close()

	ctx := reqid.WithValue(context.Background(), "req-42")
	resp, err := fbhttp.Post(srv.URL + "/orders").
		WithContext(ctx).
		Bearer("tok").
		Body(map[string]any{"customerName": "Ana"}).
		Send()
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "POST", got.method)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.Equal(t, "application/json", got.ct)
	assert.Equal(t, "req-42", got.rid)
	assert.Equal(t, "Ana", got.body["customerName"])

	var out struct {
		ID string `json:"_id"`
	}
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "o1", out.ID)
}

func TestSend_NonSuccessIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
	}))
	defer srv.Close()

	resp, err := fbhttp.Get(srv.URL).Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, string(resp.Raw))
}

func TestSend_TimeoutIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := fbhttp.Post(srv.URL).Timeout(20 * time.Millisecond).Send()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestDefaultClientTransportIsSwappable(t *testing.T) {
	fbhttp.DefaultClient.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[]`)),
			Header:     http.Header{},
			Request:    r,
		}, nil
	})
	defer fbhttp.ResetTransport()

	resp, err := fbhttp.Get("http://backend.invalid/api/products").Send()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(resp.Raw))
}
